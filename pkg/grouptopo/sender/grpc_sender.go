package sender

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jabolina/grouptopo/pkg/grouptopo/logging"
	"github.com/jabolina/grouptopo/pkg/grouptopo/nameservice"
	"github.com/jabolina/grouptopo/pkg/grouptopo/transportpb"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// GRPCSender is the default Sender: it resolves a destination task id to
// an endpoint through a NameLookup and issues a unary Transport.Send RPC,
// reusing one ClientConn per endpoint across calls.
type GRPCSender struct {
	lookup   nameservice.NameLookup
	log      logging.Logger
	dialOpts []grpc.DialOption

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewGRPCSender builds a Sender that dials plaintext by default; pass
// dialOpts to override (e.g. transport credentials in a production
// deployment).
func NewGRPCSender(lookup nameservice.NameLookup, log logging.Logger, dialOpts ...grpc.DialOption) *GRPCSender {
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	return &GRPCSender{
		lookup:   lookup,
		log:      log,
		dialOpts: dialOpts,
		conns:    make(map[string]*grpc.ClientConn),
	}
}

func (s *GRPCSender) Send(ctx context.Context, msg wire.FramedMessage) error {
	endpoint, found, err := s.lookup.Lookup(ctx, msg.Destination)
	if err != nil {
		return fmt.Errorf("grpc sender: resolving %s: %w", msg.Destination, err)
	}
	if !found {
		return fmt.Errorf("grpc sender: destination %s not registered with the name service", msg.Destination)
	}

	conn, err := s.connFor(endpoint)
	if err != nil {
		return fmt.Errorf("grpc sender: dialing %s: %w", endpoint, err)
	}

	client := transportpb.NewTransportClient(conn)
	_, err = client.Send(ctx, &transportpb.FramedMessage{
		Group:       string(msg.Group),
		Operator:    string(msg.Operator),
		Source:      string(msg.Source),
		Destination: string(msg.Destination),
		Kind:        int32(msg.Kind),
		Payloads:    msg.Payloads,
	})
	if err != nil {
		return fmt.Errorf("grpc sender: sending to %s (%s): %w", msg.Destination, endpoint, err)
	}
	return nil
}

func (s *GRPCSender) connFor(endpoint string) (*grpc.ClientConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conn, ok := s.conns[endpoint]; ok {
		return conn, nil
	}
	conn, err := grpc.Dial(endpoint, s.dialOpts...)
	if err != nil {
		return nil, err
	}
	s.conns[endpoint] = conn
	return conn, nil
}

// Close tears down every pooled connection. Safe to call once at process
// shutdown.
func (s *GRPCSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for endpoint, conn := range s.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = fmt.Errorf("grpc sender: closing %s: %w", endpoint, err)
		}
	}
	s.conns = make(map[string]*grpc.ClientConn)
	return first
}
