package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.EqualError(t, err, "kafka brokers required")
}
