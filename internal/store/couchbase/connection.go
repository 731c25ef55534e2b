package couchbase

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/patient"
)

// ConnectionManager handles Couchbase cluster and bucket connections
type ConnectionManager struct {
	cluster    *gocb.Cluster
	bucket     *gocb.Bucket
	collection *gocb.Collection
	keyspace   string
}

// connectionString accepts couchbase://, couchbases://, http:// or a bare host
func connectionString(url string) string {
	switch {
	case strings.HasPrefix(url, "couchbase://"), strings.HasPrefix(url, "couchbases://"):
		return url
	case strings.HasPrefix(url, "http://"):
		return "couchbase://" + strings.TrimPrefix(url, "http://")
	case strings.HasPrefix(url, "https://"):
		return "couchbases://" + strings.TrimPrefix(url, "https://")
	default:
		return "couchbase://" + url
	}
}

// keyspace renders the fully qualified, escaped N1QL keyspace
func keyspace(bucket, scope, collection string) string {
	return fmt.Sprintf("`%s`.`%s`.`%s`", bucket, scope, collection)
}

func withDefaults(cfg config.Couchbase) config.Couchbase {
	if cfg.Scope == "" {
		cfg.Scope = "_default"
	}
	if cfg.Collection == "" {
		cfg.Collection = "_default"
	}
	return cfg
}

// NewConnectionManager connects and waits for the key-value and query services
func NewConnectionManager(cfg config.Couchbase) (*ConnectionManager, error) {
	cfg = withDefaults(cfg)

	log.Info().
		Str("url", cfg.URL).
		Str("bucket", cfg.Bucket).
		Str("scope", cfg.Scope).
		Str("collection", cfg.Collection).
		Msg("Creating Couchbase connection")

	cluster, err := gocb.Connect(connectionString(cfg.URL), gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect cluster: %w", patient.ErrStoreUnavailable, err)
	}

	bucket := cluster.Bucket(cfg.Bucket)
	err = bucket.WaitUntilReady(30*time.Second, &gocb.WaitUntilReadyOptions{
		ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue, gocb.ServiceTypeQuery},
	})
	if err != nil {
		_ = cluster.Close(nil)
		return nil, fmt.Errorf("%w: bucket %q not ready: %w", patient.ErrStoreUnavailable, cfg.Bucket, err)
	}

	log.Info().Msg("Couchbase connection created successfully")
	return &ConnectionManager{
		cluster:    cluster,
		bucket:     bucket,
		collection: bucket.Scope(cfg.Scope).Collection(cfg.Collection),
		keyspace:   keyspace(cfg.Bucket, cfg.Scope, cfg.Collection),
	}, nil
}

// Close closes the Couchbase connection
func (cm *ConnectionManager) Close() error {
	if cm.cluster == nil {
		return nil
	}
	return cm.cluster.Close(nil)
}

// GetCollection returns the collection holding patient documents
func (cm *ConnectionManager) GetCollection() *gocb.Collection {
	return cm.collection
}

// GetCluster returns the cluster instance
func (cm *ConnectionManager) GetCluster() *gocb.Cluster {
	return cm.cluster
}

// Keyspace returns the escaped bucket.scope.collection path
func (cm *ConnectionManager) Keyspace() string {
	return cm.keyspace
}
