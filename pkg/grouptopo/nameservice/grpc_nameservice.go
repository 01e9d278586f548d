package nameservice

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/transportpb"
)

// GRPCNameLookup is the default NameLookup: it asks a fixed driver
// endpoint to resolve a task id, per spec's driver-mediated name service.
// It does not cache negative results, since a task can register with the
// driver at any point during the job's startup race.
type GRPCNameLookup struct {
	driverEndpoint string
	dialOpts       []grpc.DialOption

	mu   sync.Mutex
	conn *grpc.ClientConn
}

func NewGRPCNameLookup(driverEndpoint string, dialOpts ...grpc.DialOption) *GRPCNameLookup {
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	return &GRPCNameLookup{driverEndpoint: driverEndpoint, dialOpts: dialOpts}
}

func (n *GRPCNameLookup) Lookup(ctx context.Context, id ids.TaskID) (string, bool, error) {
	conn, err := n.dial()
	if err != nil {
		return "", false, fmt.Errorf("grpc nameservice: dialing driver %s: %w", n.driverEndpoint, err)
	}
	client := transportpb.NewTransportClient(conn)
	resp, err := client.Lookup(ctx, &transportpb.LookupRequest{TaskId: string(id)})
	if err != nil {
		return "", false, fmt.Errorf("grpc nameservice: looking up %s: %w", id, err)
	}
	return resp.GetEndpoint(), resp.GetFound(), nil
}

// Register asks the driver to record this task's own endpoint, the RPC
// side of Registry.Register.
func (n *GRPCNameLookup) Register(ctx context.Context, self ids.TaskID, endpoint string) error {
	conn, err := n.dial()
	if err != nil {
		return fmt.Errorf("grpc nameservice: dialing driver %s: %w", n.driverEndpoint, err)
	}
	client := transportpb.NewTransportClient(conn)
	if _, err := client.Register(ctx, &transportpb.RegisterRequest{TaskId: string(self), Endpoint: endpoint}); err != nil {
		return fmt.Errorf("grpc nameservice: registering %s: %w", self, err)
	}
	return nil
}

// Unregister asks the driver to drop this task's endpoint.
func (n *GRPCNameLookup) Unregister(ctx context.Context, self ids.TaskID) error {
	conn, err := n.dial()
	if err != nil {
		return fmt.Errorf("grpc nameservice: dialing driver %s: %w", n.driverEndpoint, err)
	}
	client := transportpb.NewTransportClient(conn)
	if _, err := client.Unregister(ctx, &transportpb.UnregisterRequest{TaskId: string(self)}); err != nil {
		return fmt.Errorf("grpc nameservice: unregistering %s: %w", self, err)
	}
	return nil
}

func (n *GRPCNameLookup) dial() (*grpc.ClientConn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		return n.conn, nil
	}
	conn, err := grpc.Dial(n.driverEndpoint, n.dialOpts...)
	if err != nil {
		return nil, err
	}
	n.conn = conn
	return conn, nil
}

func (n *GRPCNameLookup) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

// Registry is the driver-side bookkeeping a GRPCNameLookup's server talks
// to: every task registers its own endpoint once, and every task looks
// every other task up by id. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[ids.TaskID]string
}

func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[ids.TaskID]string)}
}

func (r *Registry) Register(_ context.Context, id ids.TaskID, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[id] = endpoint
	return nil
}

func (r *Registry) Unregister(_ context.Context, id ids.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.endpoints, id)
	return nil
}

func (r *Registry) Lookup(ctx context.Context, id ids.TaskID) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	endpoint, ok := r.endpoints[id]
	return endpoint, ok, nil
}

var _ Directory = (*Registry)(nil)
var _ Directory = (*GRPCNameLookup)(nil)
