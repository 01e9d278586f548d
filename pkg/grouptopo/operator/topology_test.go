package operator_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/goleak"

	"github.com/jabolina/grouptopo/pkg/grouptopo/codec"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/logging"
	"github.com/jabolina/grouptopo/pkg/grouptopo/metrics"
	"github.com/jabolina/grouptopo/pkg/grouptopo/operator"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
	grouptest "github.com/jabolina/grouptopo/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// star builds one root and n leaves for a broadcast-shaped operator, all
// wired through an in-process test.Cluster, and returns them initialized.
func star(t *testing.T, n int) (root *operator.Topology[int], leaves []*operator.Topology[int], teardown func()) {
	t.Helper()

	const group, op = ids.GroupName("g"), ids.OperatorName("broadcast")
	rootID := ids.TaskID("root")
	leafIDs := make([]ids.TaskID, n)
	for i := range leafIDs {
		leafIDs[i] = ids.TaskID("leaf" + string(rune('a'+i)))
	}

	names := grouptest.NewFakeNameService().RegisterAll(append([]ids.TaskID{rootID}, leafIDs...)...)
	cluster := grouptest.NewCluster()
	log := logging.NewDefaultLogger()

	rootCfg := operator.Config{
		Group: group, Operator: op, Self: rootID, RootTaskID: rootID,
		ChildTaskIDs: leafIDs, TimeoutMillis: 2000, RetryCount: 3,
	}
	root = operator.New[int](rootCfg, codec.NewJSON[int](), cluster.Sender(), names, log, metrics.Noop{})
	cluster.Register(rootID, root.OnMessage)

	leaves = make([]*operator.Topology[int], n)
	for i, id := range leafIDs {
		cfg := operator.Config{
			Group: group, Operator: op, Self: id, RootTaskID: rootID,
			TimeoutMillis: 2000, RetryCount: 3,
		}
		leaf := operator.New[int](cfg, codec.NewJSON[int](), cluster.Sender(), names, log, metrics.Noop{})
		cluster.Register(id, leaf.OnMessage)
		leaves[i] = leaf
	}

	ctx := context.Background()
	if err := root.Initialize(ctx); err != nil {
		t.Fatalf("root Initialize: %v", err)
	}
	for _, leaf := range leaves {
		if err := leaf.Initialize(ctx); err != nil {
			t.Fatalf("leaf Initialize: %v", err)
		}
	}

	return root, leaves, func() {
		root.Close()
		for _, leaf := range leaves {
			leaf.Close()
		}
	}
}

func TestBroadcastRootToLeaves(t *testing.T) {
	root, leaves, teardown := star(t, 3)
	defer teardown()

	ctx := context.Background()
	if err := root.SendToChildren(ctx, 42, wire.Data); err != nil {
		t.Fatalf("SendToChildren: %v", err)
	}

	for i, leaf := range leaves {
		got, err := leaf.ReceiveFromParent(ctx)
		if err != nil {
			t.Fatalf("leaf %d ReceiveFromParent: %v", i, err)
		}
		if got != 42 {
			t.Fatalf("leaf %d expected 42, got %d", i, got)
		}
	}
}

// TestDispatchStampsUniqueUID checks dispatch tags every outbound
// FramedMessage with a non-empty, distinct UID (ids.NewUID, the
// diagnostics tag).
func TestDispatchStampsUniqueUID(t *testing.T) {
	const group, op = ids.GroupName("g"), ids.OperatorName("uid")
	rootID := ids.TaskID("root")
	leafIDs := []ids.TaskID{"leafa", "leafb"}

	names := grouptest.NewFakeNameService().RegisterAll(append([]ids.TaskID{rootID}, leafIDs...)...)
	cluster := grouptest.NewCluster()
	sender := cluster.Sender()
	log := logging.NewDefaultLogger()

	rootCfg := operator.Config{
		Group: group, Operator: op, Self: rootID, RootTaskID: rootID,
		ChildTaskIDs: leafIDs, TimeoutMillis: 2000, RetryCount: 3,
	}
	root := operator.New[int](rootCfg, codec.NewJSON[int](), sender, names, log, metrics.Noop{})
	cluster.Register(rootID, root.OnMessage)

	for _, id := range leafIDs {
		cfg := operator.Config{
			Group: group, Operator: op, Self: id, RootTaskID: rootID,
			TimeoutMillis: 2000, RetryCount: 3,
		}
		leaf := operator.New[int](cfg, codec.NewJSON[int](), cluster.Sender(), names, log, metrics.Noop{})
		cluster.Register(id, leaf.OnMessage)
		defer leaf.Close()
		if err := leaf.Initialize(context.Background()); err != nil {
			t.Fatalf("leaf Initialize: %v", err)
		}
	}

	if err := root.Initialize(context.Background()); err != nil {
		t.Fatalf("root Initialize: %v", err)
	}
	defer root.Close()

	if err := root.SendToChildren(context.Background(), 7, wire.Data); err != nil {
		t.Fatalf("SendToChildren: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != len(leafIDs) {
		t.Fatalf("expected %d dispatched messages, got %d", len(leafIDs), len(sent))
	}
	seen := make(map[ids.UID]bool, len(sent))
	for _, msg := range sent {
		if msg.UID == "" {
			t.Fatalf("expected a non-empty UID, got %+v", msg)
		}
		if seen[msg.UID] {
			t.Fatalf("expected distinct UIDs per dispatch, saw %s twice", msg.UID)
		}
		seen[msg.UID] = true
	}
}

func TestSendToChildrenRejectsNilSlice(t *testing.T) {
	const group, op = ids.GroupName("g"), ids.OperatorName("nil-check")
	rootID, leafID := ids.TaskID("root"), ids.TaskID("leaf")
	names := grouptest.NewFakeNameService().RegisterAll(rootID, leafID)
	cluster := grouptest.NewCluster()

	cfg := operator.Config{
		Group: group, Operator: op, Self: rootID, RootTaskID: rootID,
		ChildTaskIDs: []ids.TaskID{leafID},
	}
	root := operator.New[[]byte](cfg, codec.NewJSON[[]byte](), cluster.Sender(), names, logging.NewDefaultLogger(), metrics.Noop{})
	cluster.Register(rootID, root.OnMessage)

	if err := root.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer root.Close()

	err := root.SendToChildren(context.Background(), nil, wire.Data)
	if !errors.Is(err, operator.ErrArgument) {
		t.Fatalf("expected ErrArgument for a nil value, got %v", err)
	}
}

func TestCollectiveBeforeInitializeFails(t *testing.T) {
	cfg := operator.Config{Group: "g", Operator: "op", Self: "root", RootTaskID: "root"}
	topo := operator.New[int](cfg, codec.NewJSON[int](), grouptest.NewCluster().Sender(), grouptest.NewFakeNameService(), logging.NewDefaultLogger(), metrics.Noop{})

	if err := topo.SendToChildren(context.Background(), 1, wire.Data); !errors.Is(err, operator.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestCollectiveAfterCloseFails(t *testing.T) {
	root, _, teardown := star(t, 1)
	teardown()

	if err := root.SendToChildren(context.Background(), 1, wire.Data); !errors.Is(err, operator.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReceiveFromParentTimesOut(t *testing.T) {
	const group, op = ids.GroupName("g"), ids.OperatorName("timeout")
	rootID, leafID := ids.TaskID("root"), ids.TaskID("leaf")
	names := grouptest.NewFakeNameService().RegisterAll(rootID, leafID)
	cluster := grouptest.NewCluster()

	leafCfg := operator.Config{
		Group: group, Operator: op, Self: leafID, RootTaskID: rootID,
		TimeoutMillis: 50, RetryCount: 1,
	}
	leaf := operator.New[int](leafCfg, codec.NewJSON[int](), cluster.Sender(), names, logging.NewDefaultLogger(), metrics.Noop{})
	cluster.Register(leafID, leaf.OnMessage)

	if err := leaf.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer leaf.Close()

	_, err := leaf.ReceiveFromParent(context.Background())
	var timeoutErr *operator.ReceiveTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *ReceiveTimeoutError, got %T: %v", err, err)
	}
	if len(timeoutErr.Pending) != 1 || timeoutErr.Pending[0] != rootID {
		t.Fatalf("expected pending=[%s], got %v", rootID, timeoutErr.Pending)
	}
}

func TestInitializeFailsWhenPeerNeverResolves(t *testing.T) {
	names := grouptest.NewFakeNameService() // nothing registered
	cluster := grouptest.NewCluster()

	cfg := operator.Config{
		Group: "g", Operator: "op", Self: "root", RootTaskID: "root",
		ChildTaskIDs: []ids.TaskID{"missing"}, RetryCount: 1,
	}
	topo := operator.New[int](cfg, codec.NewJSON[int](), cluster.Sender(), names, logging.NewDefaultLogger(), metrics.Noop{})

	err := topo.Initialize(context.Background())
	var initErr *operator.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected *InitializationError, got %T: %v", err, err)
	}
	if initErr.Peer != "missing" {
		t.Fatalf("expected failing peer %q, got %q", "missing", initErr.Peer)
	}
}

func TestOnMessageRejectsUnknownPeer(t *testing.T) {
	root, _, teardown := star(t, 1)
	defer teardown()

	err := root.OnMessage(wire.FramedMessage{
		Group: root.Group(), Operator: root.Operator(),
		Source: "stranger", Destination: "root",
		Kind: wire.Data, Payloads: [][]byte{[]byte("1")},
	})
	if !errors.Is(err, operator.ErrUnknownPeer) {
		t.Fatalf("expected ErrUnknownPeer, got %v", err)
	}
}
