package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/vaultguard/pkg/cryptox"
	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
)

var fastParams = cryptox.Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

var _ = Describe("Session lifecycle", func() {
	var (
		ctx   context.Context
		st    *sqlite.Store
		codec *jwtx.Codec
		svc   *service.AuthService
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		st, err = sqlite.NewStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(st.ApplyMigrations()).To(Succeed())
		DeferCleanup(st.Close)

		codec, err = jwtx.NewCodec([]byte("suite-secret"), jwtx.WithIssuer("vaultguard-test"))
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewAuthService(
			st, codec,
			cryptox.NewHasher([]byte("suite-pepper"), fastParams),
			service.DefaultConfig(),
			service.ResponseDelivery{},
			nil,
		)
	})

	Context("for a registered user", func() {
		var user domain.PublicUser

		BeforeEach(func() {
			var err error
			user, err = svc.Register(ctx, "u@x.com", "pw1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses a second registration", func() {
			_, err := svc.Register(ctx, "u@x.com", "pw1")
			Expect(err).To(MatchError(service.ErrConflict))
		})

		When("logged in", func() {
			var sess domain.Session

			BeforeEach(func() {
				var err error
				sess, err = svc.Login(ctx, "u@x.com", "pw1")
				Expect(err).NotTo(HaveOccurred())
			})

			It("identifies the user from the access token", func() {
				self, err := svc.ReadSelf(ctx, sess.AccessToken)
				Expect(err).NotTo(HaveOccurred())
				Expect(self).To(Equal(user))
			})

			It("mints access tokens for the same subject on refresh", func() {
				refreshed, err := svc.Refresh(ctx, sess.RefreshToken)
				Expect(err).NotTo(HaveOccurred())

				claims, err := codec.Verify(refreshed.AccessToken)
				Expect(err).NotTo(HaveOccurred())
				Expect(claims.Subject).To(Equal("u@x.com"))
				Expect(claims.Issuer).To(Equal("vaultguard-test"))
			})

			It("keeps the refresh token usable until logout", func() {
				for range 3 {
					_, err := svc.Refresh(ctx, sess.RefreshToken)
					Expect(err).NotTo(HaveOccurred())
				}
			})

			When("logged out", func() {
				BeforeEach(func() {
					Expect(svc.Logout(ctx, sess.RefreshToken)).To(Succeed())
				})

				It("rejects the refresh token as revoked", func() {
					_, err := svc.Refresh(ctx, sess.RefreshToken)
					Expect(err).To(MatchError(service.ErrRevokedToken))
				})

				It("still accepts the access token until it expires", func() {
					_, err := svc.ReadSelf(ctx, sess.AccessToken)
					Expect(err).NotTo(HaveOccurred())
				})

				It("leaves other sessions alone", func() {
					other, err := svc.Login(ctx, "u@x.com", "pw1")
					Expect(err).NotTo(HaveOccurred())

					_, err = svc.Refresh(ctx, other.RefreshToken)
					Expect(err).NotTo(HaveOccurred())
				})
			})
		})

		When("the password is reset", func() {
			var resetToken string

			BeforeEach(func() {
				var err error
				resetToken, err = svc.RequestPasswordReset(ctx, "u@x.com")
				Expect(err).NotTo(HaveOccurred())
				Expect(resetToken).NotTo(BeEmpty())
				Expect(svc.ConfirmPasswordReset(ctx, resetToken, "pw2")).To(Succeed())
			})

			It("only accepts the new password", func() {
				_, err := svc.Login(ctx, "u@x.com", "pw1")
				Expect(err).To(MatchError(service.ErrInvalidCredentials))

				_, err = svc.Login(ctx, "u@x.com", "pw2")
				Expect(err).NotTo(HaveOccurred())
			})

			It("consumes the reset token", func() {
				err := svc.ConfirmPasswordReset(ctx, resetToken, "pw3")
				Expect(err).To(MatchError(service.ErrInvalidToken))
			})
		})
	})

	It("rejects tokens signed by another issuer", func() {
		_, err := svc.Register(ctx, "u@x.com", "pw1")
		Expect(err).NotTo(HaveOccurred())

		foreign, err := jwtx.NewCodec([]byte("suite-secret"), jwtx.WithIssuer("someone-else"))
		Expect(err).NotTo(HaveOccurred())
		token, err := foreign.Sign(jwtx.NewClaims("u@x.com", jwtx.PurposeAccess), time.Hour)
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.ReadSelf(ctx, token)
		Expect(err).To(MatchError(service.ErrInvalidToken))
	})
})
