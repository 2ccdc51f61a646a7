package server

import (
	"context"
	"net"
	"testing"

	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startDuelServer(t *testing.T, srv DuelServer) *DuelClient {
	t.Helper()
	logger := zaptest.NewLogger(t)
	lis := bufconn.Listen(1 << 20)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(ChainUnaryInterceptors(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
	)))
	RegisterDuelServer(grpcServer, srv)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewDuelClient(conn)
}

type newGameReply struct {
	Match  game.MatchView `json:"match"`
	Events []rules.Event  `json:"events"`
}

type executeReply struct {
	Result game.Result    `json:"result"`
	Match  game.MatchView `json:"match"`
}

func TestGRPCMatchFlow(t *testing.T) {
	engine := game.NewEngine(zaptest.NewLogger(t))
	client := startDuelServer(t, NewDuelServer(engine, zaptest.NewLogger(t)))
	ctx := context.Background()

	var created newGameReply
	require.NoError(t, client.Call(ctx, "NewGame", map[string]string{"seed": "grpc-seed", "human_name": "Ada"}, &created))
	matchID := created.Match.ID
	require.NotEmpty(t, matchID)
	assert.Equal(t, "Ada", created.Match.Players[rules.SideHuman].Name)
	assert.NotEmpty(t, created.Events)

	var refused executeReply
	require.NoError(t, client.Call(ctx, "Execute", map[string]interface{}{
		"match_id": matchID,
		"command":  game.Command{Type: game.CommandDeclareAttack},
	}, &refused))
	assert.False(t, refused.Result.Accepted)
	assert.Equal(t, rules.ReasonWrongPhase, refused.Result.Reason)

	var ended executeReply
	require.NoError(t, client.Call(ctx, "Execute", map[string]interface{}{
		"match_id": matchID,
		"command":  game.Command{Type: game.CommandEndTurn, Side: rules.SideHuman},
	}, &ended))
	assert.True(t, ended.Result.Accepted)
	assert.Equal(t, 2, ended.Match.Turn)

	var state struct {
		Match game.MatchView `json:"match"`
	}
	require.NoError(t, client.Call(ctx, "GetState", map[string]string{"match_id": matchID}, &state))
	assert.NotEmpty(t, state.Match.Players[rules.SideHuman].Hand)
	assert.Empty(t, state.Match.Players[rules.SideOpponent].Hand)

	var events struct {
		Events []rules.Event `json:"events"`
	}
	require.NoError(t, client.Call(ctx, "GetEvents", map[string]interface{}{"match_id": matchID, "since": len(created.Events)}, &events))
	require.NotEmpty(t, events.Events)
	assert.Equal(t, len(created.Events)+1, events.Events[0].Seq)

	require.NoError(t, client.Call(ctx, "EndGame", map[string]string{"match_id": matchID}, nil))
	assert.Equal(t, 0, engine.MatchCount())
}

func TestGRPCErrorCodes(t *testing.T) {
	engine := game.NewEngine(zaptest.NewLogger(t))
	client := startDuelServer(t, NewDuelServer(engine, zaptest.NewLogger(t)))
	ctx := context.Background()

	err := client.Call(ctx, "GetState", map[string]string{"match_id": "missing"}, nil)
	assert.Equal(t, codes.NotFound, status.Code(err))

	var created newGameReply
	require.NoError(t, client.Call(ctx, "NewGame", map[string]string{}, &created))

	err = client.Call(ctx, "Execute", map[string]interface{}{
		"match_id": created.Match.ID,
		"command":  map[string]string{"type": "teleport"},
	}, nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = client.Call(ctx, "Execute", map[string]interface{}{
		"match_id": created.Match.ID,
		"command":  map[string]string{"type": "end_turn", "side": "nobody"},
	}, nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCNeverRevealsOpponentHand(t *testing.T) {
	engine := game.NewEngine(zaptest.NewLogger(t))
	client := startDuelServer(t, NewDuelServer(engine, zaptest.NewLogger(t)))
	ctx := context.Background()

	var created newGameReply
	require.NoError(t, client.Call(ctx, "NewGame", map[string]string{"seed": "hidden-hand"}, &created))
	matchID := created.Match.ID
	assert.Empty(t, created.Match.Players[rules.SideOpponent].Hand)

	var state struct {
		Match game.MatchView `json:"match"`
	}
	require.NoError(t, client.Call(ctx, "GetState", map[string]string{"match_id": matchID, "viewer": "opponent"}, &state))
	opponent := state.Match.Players[rules.SideOpponent]
	assert.Empty(t, opponent.Hand)
	assert.Equal(t, 4, opponent.HandCount)
	assert.NotEmpty(t, state.Match.Players[rules.SideHuman].Hand)

	// a side sent by the client is replaced by the human side
	var played executeReply
	require.NoError(t, client.Call(ctx, "Execute", map[string]interface{}{
		"match_id": matchID,
		"command":  game.Command{Type: game.CommandEndTurn, Side: rules.SideOpponent},
	}, &played))
	assert.True(t, played.Result.Accepted)
	assert.Equal(t, rules.SideHuman, played.Match.Current)
	assert.Empty(t, played.Match.Players[rules.SideOpponent].Hand)
}

type panickingServer struct{ DuelServer }

func (panickingServer) GetState(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	panic("boom")
}

func TestGRPCRecoversPanics(t *testing.T) {
	client := startDuelServer(t, panickingServer{})

	err := client.Call(context.Background(), "GetState", map[string]string{}, nil)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestChainUnaryInterceptorsOrder(t *testing.T) {
	var order []string
	record := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}
	chain := ChainUnaryInterceptors(record("outer"), record("inner"))

	_, err := chain(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"}, func(ctx context.Context, req interface{}) (interface{}, error) {
		order = append(order, "handler")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
