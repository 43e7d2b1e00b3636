package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// protectedMethods need a valid token for an active account.
var protectedMethods = map[string]struct{}{
	pb.MethodWhoAmI: {},
}

// tokenFromMetadata reads "authorization: Bearer <t>", falling back to the
// bare "access_token" key.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(pb.AuthorizationKey); len(values) > 0 {
		if token, ok := auth.ParseBearer(values[0]); ok {
			return token
		}
	}
	if values := md.Get(pb.AccessTokenKey); len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if _, ok := protectedMethods[info.FullMethod]; ok {

		accessToken := tokenFromMetadata(ctx)
		if accessToken == "" {
			return nil, toStatus(common.ErrUnauthenticated)
		}

		user, err := s.users.CurrentUser(ctx, accessToken)
		if err != nil {
			s.logger.Info(ctx, "rejected token", "method", info.FullMethod, "reason", err.Error())
			return nil, toStatus(err)
		}

		ctx = auth.WithUser(ctx, user)
	}

	return handler(ctx, req)
}
