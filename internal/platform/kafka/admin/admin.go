// Package admin provisions Kafka topics.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// TopicSpec describes a topic to create.
type TopicSpec struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
	RetentionMs       string
}

// EnsureTopics creates the topics that do not already exist.
func EnsureTopics(ctx context.Context, brokers []string, topics ...TopicSpec) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return fmt.Errorf("create kafka admin client: %w", err)
	}
	defer client.Close()
	adm := kadm.NewClient(client)

	for _, t := range topics {
		partitions, replication := t.Partitions, t.ReplicationFactor
		if partitions <= 0 {
			partitions = 1
		}
		if replication <= 0 {
			replication = 1
		}
		var configs map[string]*string
		if t.RetentionMs != "" {
			retention := t.RetentionMs
			configs = map[string]*string{"retention.ms": &retention}
		}
		resp, err := adm.CreateTopic(ctx, partitions, replication, configs, t.Name)
		if err == nil {
			err = resp.Err
		}
		if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Name, err)
		}
	}
	return nil
}
