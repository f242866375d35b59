package mongodb

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenHook runs once for every term database the client opens, e.g. to create indexes.
type OpenHook func(ctx context.Context, db *mongo.Database) error

// Client represents a MongoDB client serving one fixed database plus one database per school term
type Client struct {
	client     *mongo.Client
	original   string
	termPrefix string
	onOpen     OpenHook

	mu    sync.Mutex
	terms map[string]*mongo.Database
}

// Options configures NewClient
type Options struct {
	URI        string
	Database   string
	TermPrefix string
	Timeout    time.Duration
	OnTermOpen OpenHook
}

// NewClient creates a new MongoDB client and checks the connection
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	clientOptions := options.Client().ApplyURI(opts.URI)
	if opts.Timeout > 0 {
		clientOptions.SetTimeout(opts.Timeout)
		clientOptions.SetServerSelectionTimeout(opts.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Client{
		client:     client,
		original:   opts.Database,
		termPrefix: opts.TermPrefix,
		onOpen:     opts.OnTermOpen,
		terms:      make(map[string]*mongo.Database),
	}, nil
}

// Original returns the fixed database holding users, organizations, roles and sessions
func (c *Client) Original() *mongo.Database {
	return c.client.Database(c.original)
}

// Database returns a database by name
func (c *Client) Database(name string) *mongo.Database {
	return c.client.Database(name)
}

// TermDatabase returns the database of the term with the given key, running the open hook the first time.
// The handle is cached only when the hook succeeds, so a failed index build is retried on the next call.
func (c *Client) TermDatabase(ctx context.Context, key string) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.terms[key]; ok {
		return db, nil
	}

	db := c.client.Database(TermDatabaseName(c.termPrefix, key))
	if c.onOpen != nil {
		if err := c.onOpen(ctx, db); err != nil {
			return nil, err
		}
	}
	c.terms[key] = db
	return db, nil
}

// Terms returns the keys of the term databases opened so far
func (c *Client) Terms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.terms))
	for k := range c.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Disconnect disconnects from MongoDB
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// TermDatabaseName builds the database name of a term key
func TermDatabaseName(prefix, key string) string {
	return prefix + key
}
