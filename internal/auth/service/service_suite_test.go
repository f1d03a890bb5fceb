package service_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

func TestServiceFlows(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Flow Suite")
}
