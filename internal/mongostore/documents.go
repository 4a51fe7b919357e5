package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
)

func decode(raw interface{ Decode(any) error }, collection string) (*gateway.Document, error) {
	var d gateway.Document
	if err := raw.Decode(&d); err != nil {
		return nil, err
	}
	d.Collection = collection
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	if d.Fields == nil {
		d.Fields = gateway.Fields{}
	}
	return &d, nil
}

func (s *Store) Create(ctx context.Context, collection, id string, fields gateway.Fields) (*gateway.Document, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := s.timestamp()
	doc := gateway.Document{
		ID:         id,
		Collection: collection,
		CreatedAt:  now,
		UpdatedAt:  now,
		Fields:     gateway.Normalize(fields),
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, gateway.ErrConflict
		}
		return nil, fmt.Errorf("insert %s document: %w", collection, err)
	}
	return &doc, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (*gateway.Document, error) {
	doc, err := decode(s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}), collection)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, gateway.ErrNotFound
		}
		return nil, fmt.Errorf("get %s document: %w", collection, err)
	}
	return doc, nil
}

func (s *Store) List(ctx context.Context, collection string, queries ...gateway.Query) ([]gateway.Document, error) {
	plan, err := gateway.Compile(queries)
	if err != nil {
		return nil, err
	}
	cur, err := s.db.Collection(collection).Find(ctx, filter(plan), findOptions(plan))
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", collection, err)
	}
	defer cur.Close(ctx)

	docs := []gateway.Document{}
	for cur.Next(ctx) {
		d, err := decode(cur, collection)
		if err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		docs = append(docs, *d)
	}
	return docs, cur.Err()
}

func (s *Store) Update(ctx context.Context, collection, id string, fields gateway.Fields) (*gateway.Document, error) {
	set := bson.M{"updatedAt": s.timestamp()}
	for k, v := range gateway.Normalize(fields) {
		set["fields."+k] = v
	}
	res := s.db.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	doc, err := decode(res, collection)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, gateway.ErrNotFound
		}
		return nil, fmt.Errorf("update %s document: %w", collection, err)
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s document: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// path maps a query field onto its stored location.
func path(field string) string {
	switch field {
	case gateway.FieldID:
		return "_id"
	case gateway.FieldCreatedAt:
		return "createdAt"
	case gateway.FieldUpdatedAt:
		return "updatedAt"
	default:
		return "fields." + field
	}
}

// filter renders the plan's equality filters. Values that look numeric also
// match numeric fields, as they do in the memory backend.
func filter(plan gateway.Plan) bson.M {
	clauses := make([]bson.M, 0, len(plan.Filters))
	for _, q := range plan.Filters {
		in := bson.A{}
		for _, v := range q.Values {
			switch q.Field {
			case gateway.FieldCreatedAt, gateway.FieldUpdatedAt:
				if t, err := time.Parse(gateway.TimeLayout, v); err == nil {
					in = append(in, t)
				}
				continue
			}
			in = append(in, v)
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				in = append(in, n)
			} else if x, err := strconv.ParseFloat(v, 64); err == nil {
				in = append(in, x)
			}
		}
		clauses = append(clauses, bson.M{path(q.Field): bson.M{"$in": in}})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		and := make(bson.A, len(clauses))
		for i, c := range clauses {
			and[i] = c
		}
		return bson.M{"$and": and}
	}
}

func findOptions(plan gateway.Plan) *options.FindOptions {
	dir := 1
	if plan.Desc {
		dir = -1
	}
	sort := bson.D{{Key: path(plan.OrderBy), Value: dir}}
	if plan.OrderBy != gateway.FieldCreatedAt {
		sort = append(sort, bson.E{Key: "createdAt", Value: 1})
	}
	opts := options.Find().SetSort(sort)
	if plan.Limit > 0 {
		opts.SetLimit(int64(plan.Limit))
	}
	return opts
}
