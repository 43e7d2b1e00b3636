// Package client talks to the gophauth IdentityService over gRPC.
//
// GRPCClient owns the connection and the current access token. A unary
// interceptor attaches the token as "authorization: Bearer <token>" metadata
// to every call once one is known, and gRPC status codes are mapped to the
// sentinel errors in errors.go so callers can use errors.Is:
//
//	codes.Unauthenticated    -> ErrUnauthorized
//	codes.Unavailable        -> ErrUnavailable
//	codes.AlreadyExists      -> ErrAlreadyExists
//	codes.InvalidArgument    -> ErrInvalidInput
//	codes.FailedPrecondition -> ErrInactive
package client
