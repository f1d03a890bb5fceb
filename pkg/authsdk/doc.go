/*
Package authsdk provides a client SDK for the VaultGuard authentication
service, plus the wire types and error values the server itself uses.

# Overview

SDKClient covers every public route. Login returns a Session which keeps the
access token in memory while the refresh token lives only in the client's
cookie jar, exactly as a browser would hold it:

	client := authsdk.NewSDKClient("https://auth.example.com")

	user, err := client.Register(ctx, "u@example.com", "correct horse")
	session, err := client.Login(ctx, "u@example.com", "correct horse")

	me, err := session.Me(ctx)       // refreshes the access token when needed
	err = session.Logout(ctx)        // revokes the refresh cookie

# Errors

Failed calls return *APIError. The predefined values can be matched with
errors.Is:

	_, err := client.Login(ctx, email, "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// ...
	}

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package authsdk
