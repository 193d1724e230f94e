package grpcstore

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"goldenseed.dev/gqs/cidutil"
	"goldenseed.dev/gqs/store"
	"goldenseed.dev/gqs/store/memstore"
	"goldenseed.dev/gqs/store/testkit"
)

// newBufClient starts an in-process server backed by a fresh memstore and
// returns a connected client.
func newBufClient(t *testing.T) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterEnvelopeStoreServer(srv, &Server{Store: memstore.New()})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
	cc, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewEnvelopeStoreClient(cc), Timeout: 2 * time.Second}
}

func TestConformance(t *testing.T) {
	testkit.RunConformance(t, func(t *testing.T) store.Store {
		return newBufClient(t)
	})
}

func TestGetMissing_MapsToNotFound(t *testing.T) {
	c := newBufClient(t)
	id, err := cidutil.Sum([]byte("never stored"))
	if err != nil {
		t.Fatalf("cidutil.Sum: %v", err)
	}
	if _, err := c.Get(id); !store.IsNotFound(err) {
		t.Fatalf("missing object over gRPC: got %v, want ErrNotFound", err)
	}
}

func TestPutNonEnvelope_MapsToSentinel(t *testing.T) {
	c := newBufClient(t)
	if _, err := c.Put([]byte("junk")); !errors.Is(err, store.ErrNotEnvelope) {
		t.Fatalf("non-envelope Put over gRPC: got %v, want ErrNotEnvelope", err)
	}
}

func TestRoundTripThroughServer(t *testing.T) {
	c := newBufClient(t)
	obj := testkit.EnvelopeBytes(t, 48, 200)

	id, err := c.Put(obj)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !c.Has(id) {
		t.Fatalf("Has missed a stored object")
	}
	got, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	wantID, err := cidutil.Sum(got)
	if err != nil {
		t.Fatalf("cidutil.Sum: %v", err)
	}
	if !wantID.Equals(id) {
		t.Fatalf("returned bytes do not hash to the requested CID")
	}
}
