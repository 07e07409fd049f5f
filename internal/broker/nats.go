package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/navbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/navbuilder/internal/logfields"
)

const (
	setupTimeout   = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// streamPublisher is the part of jetstream.JetStream used for publishing.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// kvPutter is the part of jetstream.KeyValue used for storing trees.
type kvPutter interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// NATSPublisher publishes build notifications to a JetStream subject and
// keeps the latest trees in a KV bucket.
type NATSPublisher struct {
	conn    *nats.Conn
	js      streamPublisher
	kv      kvPutter
	subject string
}

// NewNATSPublisher connects to the configured server and makes sure the
// stream and KV bucket exist.
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("navbuilder"))
	if err != nil {
		return nil, messagingError(err, "failed to connect to NATS").WithContext("url", cfg.URL).Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, messagingError(err, "failed to create JetStream context").Build()
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName(cfg.KVBucket),
		Description: "navbuilder build notifications",
		Subjects:    []string{cfg.Subject},
		MaxMsgs:     1000,
	}); err != nil {
		conn.Close()
		return nil, messagingError(err, "failed to create build stream").
			WithContext("subject", cfg.Subject).Build()
	}

	kv, err := openBucket(ctx, js, cfg.KVBucket)
	if err != nil {
		conn.Close()
		return nil, messagingError(err, "failed to initialize KV bucket").
			WithContext("bucket", cfg.KVBucket).Build()
	}

	slog.Info("NATS publisher initialized",
		slog.String("url", cfg.URL),
		logfields.Subject(cfg.Subject),
		slog.String("kv_bucket", cfg.KVBucket))

	return newNATSPublisher(conn, js, kv, cfg.Subject), nil
}

func newNATSPublisher(conn *nats.Conn, js streamPublisher, kv kvPutter, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, js: js, kv: kv, subject: subject}
}

func openBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Latest navbuilder navigation trees",
		History:     1,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Created KV bucket for navigation trees", slog.String("bucket", bucket))
	return kv, nil
}

// streamName derives a valid stream name from the bucket name.
func streamName(bucket string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, bucket)
	if name == "" {
		name = "NAVBUILDER"
	}
	return name + "_BUILDS"
}

// PublishBuild stores the trees in the KV bucket, then publishes the
// notification. Trees are written first so a consumer reacting to the
// message reads the matching version.
func (p *NATSPublisher) PublishBuild(ctx context.Context, n Notification) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	for _, kv := range []struct {
		key   string
		value []byte
	}{
		{KeyNavbar, n.Navbar},
		{KeySidebar, n.Sidebar},
		{KeyLatest, []byte(n.BuildID)},
	} {
		if kv.value == nil {
			continue
		}
		if _, err := p.kv.Put(ctx, kv.key, kv.value); err != nil {
			return messagingError(err, "failed to store navigation tree").
				WithContext("key", kv.key).Build()
		}
	}

	data, err := json.Marshal(n)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal build notification").Build()
	}
	if _, err := p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(n.BuildID)); err != nil {
		return messagingError(err, "failed to publish build notification").
			WithContext("subject", p.subject).Build()
	}

	slog.Debug("Published build notification", logfields.BuildID(n.BuildID), logfields.Subject(p.subject))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

func messagingError(err error, msg string) *ferrors.ErrorBuilder {
	return ferrors.WrapError(err, ferrors.CategoryMessaging, msg).Retryable()
}
