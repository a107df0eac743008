package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clientcheckin/checkin-web/config"
)

// RedisConnectConfig contains configuration for the session store connection.
type RedisConnectConfig struct {
	Redis  config.RedisConfig
	Logger *slog.Logger
}

type redisTopology string

const (
	topologyDirect   redisTopology = "direct"
	topologySentinel redisTopology = "sentinel"
	topologyCluster  redisTopology = "cluster"
)

// redisTarget is a resolved connection plan: which topology to dial and a
// credential-free description for logs.
type redisTarget struct {
	topology redisTopology
	opts     *redis.UniversalOptions
	desc     string
}

// ConnectRedis dials the configured topology and pings it within DialTimeout.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func ConnectRedis(ctx context.Context, cfg RedisConnectConfig) (redis.UniversalClient, error) {
	target, err := resolveRedisTarget(cfg.Redis)
	if err != nil {
		return nil, err
	}
	client := target.client()

	pingCtx, cancel := context.WithTimeout(ctx, target.opts.DialTimeout)
	defer cancel()
	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis %s: %w", target.desc, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "redis connected", "topology", target.topology, "addr", target.desc)
	}
	return client, nil
}

//nolint:ireturn // see ConnectRedis.
func (t redisTarget) client() redis.UniversalClient {
	switch t.topology {
	case topologyCluster:
		return redis.NewClusterClient(t.opts.Cluster())
	case topologySentinel:
		return redis.NewFailoverClient(t.opts.Failover())
	default:
		return redis.NewClient(t.opts.Simple())
	}
}

// resolveRedisTarget turns RedisConfig into dial options. REDIS_URI may be a
// bare host:port or a redis:// / rediss:// URL; URL credentials and TLS win
// over REDIS_PASSWORD.
func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	opts := &redis.UniversalOptions{
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	switch {
	case cfg.UseCluster:
		opts.Addrs = nonBlank(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 {
			if err := applyURI(opts, cfg.URI); err != nil {
				return redisTarget{}, fmt.Errorf("redis cluster: %w", err)
			}
		}
		if len(opts.Addrs) == 0 {
			return redisTarget{}, errors.New("redis cluster configuration requires at least one address")
		}
		// Cluster mode has no database selection.
		opts.DB = 0
		return redisTarget{topologyCluster, opts, "cluster:" + strings.Join(opts.Addrs, ",")}, nil

	case cfg.UseSentinel:
		opts.Addrs = nonBlank(cfg.SentinelNodes)
		if len(opts.Addrs) == 0 {
			return redisTarget{}, errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		if opts.MasterName == "" {
			return redisTarget{}, errors.New("redis sentinel configuration requires a master name")
		}
		opts.SentinelPassword = cfg.SentinelPassword
		return redisTarget{topologySentinel, opts, "sentinel:" + opts.MasterName}, nil

	default:
		if strings.TrimSpace(cfg.URI) == "" {
			return redisTarget{}, errors.New("redis direct configuration requires a URI")
		}
		if err := applyURI(opts, cfg.URI); err != nil {
			return redisTarget{}, err
		}
		return redisTarget{topologyDirect, opts, opts.Addrs[0]}, nil
	}
}

// applyURI sets the address, and for URLs the credentials, database and TLS
// config, from uri. A blank uri leaves opts untouched.
func applyURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !isRedisURL(uri) {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		// url.Error repeats the raw URL, password included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("parse redis url %s: %w", redactURL(uri), err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	if parsed.DB != 0 {
		opts.DB = parsed.DB
	}
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

func nonBlank(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// redactURL hides the password of a redis URL for error messages.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	return u.Redacted()
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
