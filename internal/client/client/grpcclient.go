package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// identityAPI is the subset of pb.IdentityServiceClient used here.
type identityAPI interface {
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	WhoAmI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      identityAPI

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationHeaderName)
	md.Set(common.AuthorizationHeaderName, "Bearer "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if t := s.token(); t != "" {
		ctx = withAccessToken(ctx, t)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGophAuthClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewIdentityServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return s.mapError(err)
	}
	if pb.String(resp, "status") != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Register creates the account and keeps the issued token for later calls.
func (s *GRPCClient) Register(ctx context.Context, username, email string, password []byte) (*models.Account, *models.Session, error) {
	req, err := structpb.NewStruct(map[string]any{
		"username": username,
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, nil, s.mapError(err)
	}

	session := sessionFrom(resp)
	s.SetAccessToken(session.AccessToken)

	return accountFrom(pb.Object(resp, "user")), session, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (s *GRPCClient) Login(ctx context.Context, username string, password []byte) (*models.Session, error) {
	req, err := structpb.NewStruct(map[string]any{
		"username": username,
		"password": string(password),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	session := sessionFrom(resp)
	s.SetAccessToken(session.AccessToken)
	return session, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*models.Account, error) {
	if s.token() == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return accountFrom(resp), nil
}

func sessionFrom(resp *structpb.Struct) *models.Session {
	return &models.Session{
		AccessToken: pb.String(resp, "access_token"),
		TokenType:   pb.String(resp, "token_type"),
		ExpiresIn:   time.Duration(pb.Number(resp, "expires_in")) * time.Second,
	}
}

func accountFrom(s *structpb.Struct) *models.Account {
	if s == nil {
		return nil
	}
	a := &models.Account{
		ID:       pb.String(s, "id"),
		UserName: pb.String(s, "username"),
		Email:    pb.String(s, "email"),
		Active:   pb.Bool(s, "active"),
	}
	if t, err := time.Parse(time.RFC3339, pb.String(s, "created_at")); err == nil {
		a.CreatedAt = t
	}
	return a
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.FailedPrecondition:
		return ErrInactive
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
