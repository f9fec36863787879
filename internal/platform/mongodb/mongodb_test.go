package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_InvalidURI(t *testing.T) {
	t.Parallel()

	client, err := Connect(context.Background(), "not-a-mongo-uri")
	assert.Error(t, err)
	assert.Nil(t, client)
}
