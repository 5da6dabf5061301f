package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mehrbod2002/coinboard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LogRepository interface {
	SaveLog(log *models.LogEntry) error
	GetAllLogs(page, limit int) ([]*models.LogEntry, error)
}

type MongoLogRepository struct {
	collection *mongo.Collection
}

func NewLogRepository(client *mongo.Client, dbName, collectionName string) LogRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoLogRepository{collection: collection}
}

func (r *MongoLogRepository) SaveLog(log *models.LogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.ID = primitive.NewObjectID()
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *MongoLogRepository) GetAllLogs(page, limit int) ([]*models.LogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logs := make([]*models.LogEntry, 0)
	skip, ok := pageOffset(page, limit)
	if !ok {
		return logs, nil
	}
	findOptions := options.Find().SetSort(bson.M{"timestamp": -1}).SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// InMemoryLogRepository keeps the most recent entries when no database is
// configured.
type InMemoryLogRepository struct {
	logs []*models.LogEntry
	max  int
	mu   sync.Mutex
}

func NewInMemoryLogRepository(max int) LogRepository {
	return &InMemoryLogRepository{
		logs: make([]*models.LogEntry, 0),
		max:  max,
	}
}

func (r *InMemoryLogRepository) SaveLog(log *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.ID = primitive.NewObjectID()
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	r.logs = append(r.logs, log)
	if r.max > 0 && len(r.logs) > r.max {
		r.logs = append([]*models.LogEntry(nil), r.logs[len(r.logs)-r.max:]...)
	}
	return nil
}

func (r *InMemoryLogRepository) GetAllLogs(page, limit int) ([]*models.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]*models.LogEntry, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		sorted = append(sorted, r.logs[i])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	skip, ok := pageOffset(page, limit)
	if !ok || skip >= len(sorted) {
		return []*models.LogEntry{}, nil
	}
	end := skip + limit
	if end > len(sorted) || end < skip {
		end = len(sorted)
	}
	return sorted[skip:end], nil
}

// pageOffset returns the number of entries before page. It reports false for
// pages that cannot exist, including offsets beyond the int range.
func pageOffset(page, limit int) (int, bool) {
	if page < 1 || limit < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}
