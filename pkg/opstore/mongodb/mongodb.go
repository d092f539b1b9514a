// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package mongodb is a durable opstore.Store backed by a MongoDB
// collection, one document per anchored operation. It is the durable
// operation-store adapter behind the resolver's abstract opstore.Store
// contract, exercising the ledger/CAS-observer side of the node that
// persists what the resolver only ever reads.
package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

const (
	suffixField            = "uniqueSuffix"
	transactionNumberField = "transactionNumber"
	operationIndexField    = "operationIndex"
)

// Store is an opstore.Store backed by MongoDB.
type Store struct {
	coll *mongo.Collection
}

// New returns a Store backed by coll, creating the indexes it relies on
// for per-suffix lookups and natural-key idempotency if they don't
// already exist.
func New(ctx context.Context, coll *mongo.Collection) (*Store, error) {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: suffixField, Value: 1}, {Key: transactionNumberField, Value: 1}, {Key: operationIndexField, Value: 1}}},
		{
			Keys: bson.D{
				{Key: suffixField, Value: 1},
				{Key: transactionNumberField, Value: 1},
				{Key: operationIndexField, Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("natural_key"),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create indexes")
	}

	return &Store{coll: coll}, nil
}

type operationDoc struct {
	UniqueSuffix         string   `bson:"uniqueSuffix"`
	Type                 string   `bson:"type"`
	OperationRequest     []byte   `bson:"operationRequest"`
	TransactionTime      uint64   `bson:"transactionTime"`
	TransactionNumber    uint64   `bson:"transactionNumber"`
	OperationIndex       uint     `bson:"operationIndex"`
	CanonicalReference   string   `bson:"canonicalReference,omitempty"`
	EquivalentReferences []string `bson:"equivalentReferences,omitempty"`
}

// Put implements opstore.Store. Natural-key collisions (the operation is
// already stored) are swallowed to keep insertion idempotent; any other
// write error is returned.
func (s *Store) Put(ops ...*operation.AnchoredOperation) error {
	ctx := context.Background()

	for _, op := range ops {
		doc := operationDoc{
			UniqueSuffix:         op.UniqueSuffix,
			Type:                 string(op.Type),
			OperationRequest:     op.OperationRequest,
			TransactionTime:      op.TransactionTime,
			TransactionNumber:    op.TransactionNumber,
			OperationIndex:       op.OperationIndex,
			CanonicalReference:   op.CanonicalReference,
			EquivalentReferences: op.EquivalentReferences,
		}

		_, err := s.coll.InsertOne(ctx, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}

			return errors.Wrap(err, "insert operation")
		}
	}

	return nil
}

// Get implements opstore.Store.
func (s *Store) Get(suffix string) ([]*operation.AnchoredOperation, error) {
	ctx := context.Background()

	opts := options.Find().SetSort(bson.D{
		{Key: transactionNumberField, Value: 1},
		{Key: operationIndexField, Value: 1},
	})

	cur, err := s.coll.Find(ctx, bson.M{suffixField: suffix}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find operations")
	}
	defer cur.Close(ctx)

	var ops []*operation.AnchoredOperation

	for cur.Next(ctx) {
		var doc operationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode operation")
		}

		ops = append(ops, &operation.AnchoredOperation{
			Type:                 operation.Type(doc.Type),
			UniqueSuffix:         doc.UniqueSuffix,
			OperationRequest:     doc.OperationRequest,
			TransactionTime:      doc.TransactionTime,
			TransactionNumber:    doc.TransactionNumber,
			OperationIndex:       doc.OperationIndex,
			CanonicalReference:   doc.CanonicalReference,
			EquivalentReferences: doc.EquivalentReferences,
		})
	}

	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate operations")
	}

	return ops, nil
}

// Delete implements opstore.Store.
func (s *Store) Delete(minTransactionNumber *uint64) error {
	ctx := context.Background()

	filter := bson.M{}
	if minTransactionNumber != nil {
		filter = bson.M{transactionNumberField: bson.M{"$gt": *minTransactionNumber}}
	}

	_, err := s.coll.DeleteMany(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "delete operations")
	}

	return nil
}
