package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
)

func plan(t *testing.T, q ...gateway.Query) gateway.Plan {
	t.Helper()
	p, err := gateway.Compile(q)
	require.NoError(t, err)
	return p
}

func TestFilter(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		plan gateway.Plan
		want bson.M
	}{
		{"none", plan(t), bson.M{}},
		{
			"single string field",
			plan(t, gateway.Equal(gateway.FieldEventID, "e-1")),
			bson.M{"fields.eventId": bson.M{"$in": bson.A{"e-1"}}},
		},
		{
			"numeric value matches numbers too",
			plan(t, gateway.Equal(gateway.FieldCapacity, "10", "2.5")),
			bson.M{"fields.capacity": bson.M{"$in": bson.A{"10", int64(10), "2.5", 2.5}}},
		},
		{
			"metadata fields",
			plan(t, gateway.Equal(gateway.FieldID, "x"), gateway.Equal(gateway.FieldCreatedAt, gateway.FormatTime(at), "junk")),
			bson.M{"$and": bson.A{
				bson.M{"_id": bson.M{"$in": bson.A{"x"}}},
				bson.M{"createdAt": bson.M{"$in": bson.A{at}}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter(tt.plan))
		})
	}
}

func TestFindOptions(t *testing.T) {
	opts := findOptions(plan(t, gateway.OrderDesc(gateway.FieldCreatedAt), gateway.Limit(100)))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, opts.Sort)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(100), *opts.Limit)

	opts = findOptions(plan(t, gateway.OrderAsc(gateway.FieldTotalScore)))
	assert.Equal(t, bson.D{{Key: "fields.totalScore", Value: 1}, {Key: "createdAt", Value: 1}}, opts.Sort)
	assert.Nil(t, opts.Limit)
}
