package common

// AccessTokenHeaderName is the legacy gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the metadata/header key for bearer credentials.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the token type reported to clients and expected in the
// Authorization header.
const BearerScheme = "bearer"
