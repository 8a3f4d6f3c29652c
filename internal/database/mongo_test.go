package database

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates user and product indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		if err := EnsureIndexes(context.Background(), mt.DB); err != nil {
			mt.Fatalf("EnsureIndexes: %v", err)
		}
	})

	mt.Run("reports failures", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
			Name:    "Unauthorized",
		}))

		if err := EnsureIndexes(context.Background(), mt.DB); err == nil {
			mt.Fatalf("expected error")
		}
	})
}
