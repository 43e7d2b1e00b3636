package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Registration request")

	user, session, err := s.users.RegisterAndIssue(ctx,
		pb.String(req, "username"), pb.String(req, "email"), pb.String(req, "password"))
	if err != nil {
		s.logger.Info(ctx, "Registration failed", "error", err.Error())
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName)
	return structpb.NewStruct(map[string]any{
		"user":         userFields(user),
		"access_token": session.AccessToken,
		"token_type":   session.TokenType,
	})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	session, err := s.users.Login(ctx, pb.String(req, "username"), pb.String(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{
		"access_token": session.AccessToken,
		"token_type":   session.TokenType,
		"expires_in":   session.ExpiresIn,
	})
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, toStatus(common.ErrUnauthenticated)
	}

	out, err := structpb.NewStruct(userFields(user))
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func userFields(u *models.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.UserName,
		"email":      u.Email,
		"active":     u.Active,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
