package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/duelforge/duel-server-go/internal/game/rules"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// DuelServiceName is the fully qualified gRPC service name.
const DuelServiceName = "duel.v1.Duel"

// DuelServer is the gRPC surface of the engine. Messages are
// google.protobuf.Struct documents carrying the JSON shape of the engine
// types.
type DuelServer interface {
	NewGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEvents(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	EndGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// DuelServiceDesc describes the service for grpc.Server registration.
var DuelServiceDesc = grpc.ServiceDesc{
	ServiceName: DuelServiceName,
	HandlerType: (*DuelServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "NewGame", Handler: unaryHandler("NewGame", DuelServer.NewGame)},
		{MethodName: "Execute", Handler: unaryHandler("Execute", DuelServer.Execute)},
		{MethodName: "GetState", Handler: unaryHandler("GetState", DuelServer.GetState)},
		{MethodName: "GetEvents", Handler: unaryHandler("GetEvents", DuelServer.GetEvents)},
		{MethodName: "EndGame", Handler: unaryHandler("EndGame", DuelServer.EndGame)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "duel/v1/duel.proto",
}

// RegisterDuelServer registers srv on s.
func RegisterDuelServer(s grpc.ServiceRegistrar, srv DuelServer) {
	s.RegisterService(&DuelServiceDesc, srv)
}

func unaryHandler(method string, call func(DuelServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	fullMethod := "/" + DuelServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DuelServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DuelServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// duelServer implements DuelServer on top of the engine.
type duelServer struct {
	engine *game.Engine
	logger *zap.Logger
}

// NewDuelServer creates the gRPC service.
func NewDuelServer(engine *game.Engine, logger *zap.Logger) DuelServer {
	return &duelServer{engine: engine, logger: logger}
}

type newGameRequest struct {
	Seed      string `json:"seed"`
	HumanName string `json:"human_name"`
}

type executeRequest struct {
	MatchID string       `json:"match_id"`
	Command game.Command `json:"command"`
}

// matchRequest addresses one match. Remote callers always play and view
// as the human, so no side is accepted from the wire.
type matchRequest struct {
	MatchID string `json:"match_id"`
}

type eventsRequest struct {
	MatchID string `json:"match_id"`
	Since   int    `json:"since"`
}

// NewGame starts a match and returns its view and setup events.
func (s *duelServer) NewGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in newGameRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}

	view, res, err := s.engine.NewGame(game.GameOptions{Seed: in.Seed, HumanName: in.HumanName})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to start match: %v", err)
	}

	s.logger.Info("match created over gRPC",
		zap.String("match_id", view.ID),
		zap.String("peer", extractHostFromContext(ctx)),
	)
	return toStruct(map[string]interface{}{
		"match":  view,
		"events": res.Events,
	})
}

// Execute applies one command as the human. A refused command is a
// successful call with accepted=false.
func (s *duelServer) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in executeRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}

	cmd := in.Command
	cmd.Side = rules.SideHuman
	res, err := s.engine.Execute(ctx, in.MatchID, cmd)
	if err != nil {
		return nil, engineError(err)
	}
	view, err := s.engine.View(in.MatchID, rules.SideHuman)
	if err != nil {
		return nil, engineError(err)
	}
	return toStruct(map[string]interface{}{
		"result": res,
		"match":  view,
	})
}

// GetState returns the match as seen by the human.
func (s *duelServer) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in matchRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	view, err := s.engine.View(in.MatchID, rules.SideHuman)
	if err != nil {
		return nil, engineError(err)
	}
	return toStruct(map[string]interface{}{"match": view})
}

// GetEvents returns the event log after a sequence number.
func (s *duelServer) GetEvents(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in eventsRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	events, err := s.engine.Events(in.MatchID, in.Since)
	if err != nil {
		return nil, engineError(err)
	}
	if events == nil {
		events = []rules.Event{}
	}
	return toStruct(map[string]interface{}{"events": events})
}

// EndGame discards a match.
func (s *duelServer) EndGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in matchRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if err := s.engine.EndGame(in.MatchID); err != nil {
		return nil, engineError(err)
	}
	return toStruct(map[string]interface{}{"match_id": in.MatchID})
}

func engineError(err error) error {
	switch {
	case errors.Is(err, game.ErrMatchNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, game.ErrUnknownCommand):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into a JSON-tagged Go value.
func fromStruct(s *structpb.Struct, out interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

// DuelClient is a thin client for the Struct-based service.
type DuelClient struct {
	cc grpc.ClientConnInterface
}

// NewDuelClient wraps a client connection.
func NewDuelClient(cc grpc.ClientConnInterface) *DuelClient {
	return &DuelClient{cc: cc}
}

// Call invokes method with req encoded as a Struct and decodes the reply
// into out (which may be nil).
func (c *DuelClient) Call(ctx context.Context, method string, req, out interface{}) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	reply := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fmt.Sprintf("/%s/%s", DuelServiceName, method), in, reply); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return fromStruct(reply, out)
}

// Helper function to extract host from context
func extractHostFromContext(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != net.Addr(nil) {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
