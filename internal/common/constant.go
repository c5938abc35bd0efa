package common

// AccessTokenHeaderName is the gRPC metadata key carrying the actor's
// access token.
const AccessTokenHeaderName = "access_token"
