package group_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/jabolina/grouptopo/pkg/grouptopo/codec"
	"github.com/jabolina/grouptopo/pkg/grouptopo/group"
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

// buildBarrierGroup returns one group client per task (root + n leaves),
// each holding a single operator named "barrier" over struct{} payloads,
// wired through a shared in-process cluster that hands every frame to the
// destination group's Dispatch.
func buildBarrierGroup(t *testing.T, n int) (root *group.CommunicationGroupClient, leaves []*group.CommunicationGroupClient, teardown func()) {
	t.Helper()

	const groupName, opName = ids.GroupName("g"), ids.OperatorName("barrier")
	rootID := ids.TaskID("root")
	leafIDs := make([]ids.TaskID, n)
	for i := range leafIDs {
		leafIDs[i] = ids.TaskID("leaf" + string(rune('a'+i)))
	}

	names := grouptest.NewFakeNameService().RegisterAll(append([]ids.TaskID{rootID}, leafIDs...)...)
	cluster := grouptest.NewCluster()
	log := logging.NewDefaultLogger()

	rootCfg := operator.Config{
		Group: groupName, Operator: opName, Self: rootID, RootTaskID: rootID,
		ChildTaskIDs: leafIDs, TimeoutMillis: 2000, RetryCount: 3,
	}
	rootTopo := operator.New[struct{}](rootCfg, codec.NewJSON[struct{}](), cluster.Sender(), names, log, metrics.Noop{})
	root = group.New(groupName, log)
	if err := root.Register(rootTopo); err != nil {
		t.Fatalf("root Register: %v", err)
	}
	cluster.Register(rootID, root.Dispatch)

	leaves = make([]*group.CommunicationGroupClient, n)
	for i, id := range leafIDs {
		cfg := operator.Config{
			Group: groupName, Operator: opName, Self: id, RootTaskID: rootID,
			TimeoutMillis: 2000, RetryCount: 3,
		}
		topo := operator.New[struct{}](cfg, codec.NewJSON[struct{}](), cluster.Sender(), names, log, metrics.Noop{})
		gc := group.New(groupName, log)
		if err := gc.Register(topo); err != nil {
			t.Fatalf("leaf Register: %v", err)
		}
		cluster.Register(id, gc.Dispatch)
		leaves[i] = gc
	}

	if err := root.InitializeAll(context.Background()); err != nil {
		t.Fatalf("root InitializeAll: %v", err)
	}
	for _, gc := range leaves {
		if err := gc.InitializeAll(context.Background()); err != nil {
			t.Fatalf("leaf InitializeAll: %v", err)
		}
	}

	return root, leaves, func() {
		root.Close()
		for _, gc := range leaves {
			gc.Close()
		}
	}
}

// TestRegisterRejectsDuplicateOperator checks the ArgumentError-shaped
// failure spec.md §4.4 implies for a misconfigured group.
func TestRegisterRejectsDuplicateOperator(t *testing.T) {
	log := logging.NewDefaultLogger()
	names := grouptest.NewFakeNameService().RegisterAll("root")
	cluster := grouptest.NewCluster()

	cfg := operator.Config{Group: "g", Operator: "dup", Self: "root", RootTaskID: "root"}
	first := operator.New[int](cfg, codec.NewJSON[int](), cluster.Sender(), names, log, metrics.Noop{})
	second := operator.New[int](cfg, codec.NewJSON[int](), cluster.Sender(), names, log, metrics.Noop{})

	gc := group.New("g", log)
	if err := gc.Register(first); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := gc.Register(second); err == nil {
		t.Fatal("expected an error registering the same operator name twice")
	}
}

// TestDispatchRoutesToRegisteredOperator exercises group.Dispatch, the
// entry point a client.GroupCommClient calls per message: the leaf's frame
// reaches the root operator through it, and a frame naming no operator is
// rejected.
func TestDispatchRoutesToRegisteredOperator(t *testing.T) {
	root, leaves, teardown := buildBarrierGroup(t, 1)
	defer teardown()

	rootTopo, err := operator.Typed[struct{}](mustOperator(t, root, "barrier"))
	if err != nil {
		t.Fatalf("Typed: %v", err)
	}

	leafTopo, err := operator.Typed[struct{}](mustOperator(t, leaves[0], "barrier"))
	if err != nil {
		t.Fatalf("Typed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := leafTopo.SendToParent(context.Background(), struct{}{}, wire.Data); err != nil {
			t.Errorf("SendToParent: %v", err)
		}
	}()

	if err := root.Dispatch(wire.FramedMessage{}); err == nil {
		t.Fatal("expected Dispatch of an unnamed operator to fail")
	}

	if _, err := rootTopo.ReceiveFromChildren(context.Background(), operator.NewReducer(func([]struct{}) struct{} { return struct{}{} })); err != nil {
		t.Fatalf("ReceiveFromChildren: %v", err)
	}
	wg.Wait()
}

func mustOperator(t *testing.T, gc *group.CommunicationGroupClient, name ids.OperatorName) operator.Handle {
	t.Helper()
	h, ok := gc.Operator(name)
	if !ok {
		t.Fatalf("operator %s not registered", name)
	}
	return h
}

// TestBarrierSynchronizesAllTasks is SPEC_FULL.md E.4: every task's
// Barrier call returns only once the round trip completes.
func TestBarrierSynchronizesAllTasks(t *testing.T) {
	root, leaves, teardown := buildBarrierGroup(t, 3)
	defer teardown()

	var wg sync.WaitGroup
	errs := make([]error, 1+len(leaves))

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = root.Barrier(context.Background(), "barrier")
	}()
	for i, gc := range leaves {
		wg.Add(1)
		go func(i int, gc *group.CommunicationGroupClient) {
			defer wg.Done()
			errs[i+1] = gc.Barrier(context.Background(), "barrier")
		}(i, gc)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("participant %d Barrier: %v", i, err)
		}
	}
}
