package worker_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(q models.ListQuery) ([]models.Product, int64, error) {
	args := m.Called(q)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// recordingNotifier captures notified products.
type recordingNotifier struct {
	notified []*models.Product
	err      error
}

func (n *recordingNotifier) NotifyProductCreated(p *models.Product) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, p)
	return nil
}

func jobBody(t *testing.T, productID string) []byte {
	t.Helper()
	body, err := json.Marshal(models.NotificationJob{ProductID: productID, EnqueuedAt: time.Now()})
	assert.NoError(t, err)
	return body
}

func TestProcessor_NotifiesWithCurrentProductState(t *testing.T) {
	mockRepo := new(MockProductRepository)
	notifier := &recordingNotifier{}
	processor := worker.NewProcessor(mockRepo, notifier)

	// The worker re-reads the product, so the notification carries the
	// state at lookup time, not at enqueue time.
	current := &models.Product{ID: "prod-1", Name: "Laptop", Price: 899.99, Stock: 7}
	mockRepo.On("GetByID", "prod-1").Return(current, nil).Once()

	err := processor.Process(jobBody(t, "prod-1"))

	assert.NoError(t, err)
	assert.Len(t, notifier.notified, 1)
	assert.Equal(t, 899.99, notifier.notified[0].Price)
	assert.Equal(t, 7, notifier.notified[0].Stock)
	mockRepo.AssertExpectations(t)
}

func TestProcessor_MissingProductIsTerminal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	notifier := &recordingNotifier{}
	processor := worker.NewProcessor(mockRepo, notifier)

	notFound := fmt.Errorf("product with ID gone: %w", repositories.ErrNotFound)
	mockRepo.On("GetByID", "gone").Return(nil, notFound).Once()

	// A deleted product is a terminal failure: no error, so the delivery
	// is acked and never redelivered.
	err := processor.Process(jobBody(t, "gone"))

	assert.NoError(t, err)
	assert.Empty(t, notifier.notified)
	mockRepo.AssertExpectations(t)
}

func TestProcessor_LookupErrorIsRetried(t *testing.T) {
	mockRepo := new(MockProductRepository)
	processor := worker.NewProcessor(mockRepo, &recordingNotifier{})

	mockRepo.On("GetByID", "prod-1").Return(nil, fmt.Errorf("connection reset")).Once()

	err := processor.Process(jobBody(t, "prod-1"))

	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProcessor_NotifierErrorIsRetried(t *testing.T) {
	mockRepo := new(MockProductRepository)
	notifier := &recordingNotifier{err: fmt.Errorf("smtp unavailable")}
	processor := worker.NewProcessor(mockRepo, notifier)

	mockRepo.On("GetByID", "prod-1").Return(&models.Product{ID: "prod-1", Name: "Laptop"}, nil).Once()

	err := processor.Process(jobBody(t, "prod-1"))

	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProcessor_MalformedJobIsDropped(t *testing.T) {
	mockRepo := new(MockProductRepository)
	processor := worker.NewProcessor(mockRepo, &recordingNotifier{})

	err := processor.Process([]byte("not-json"))

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestProcessor_RedeliveryIsIdempotent(t *testing.T) {
	mockRepo := new(MockProductRepository)
	notifier := &recordingNotifier{}
	processor := worker.NewProcessor(mockRepo, notifier)

	product := &models.Product{ID: "prod-1", Name: "Laptop", Price: 899.99, Stock: 7}
	mockRepo.On("GetByID", "prod-1").Return(product, nil).Twice()

	body := jobBody(t, "prod-1")
	assert.NoError(t, processor.Process(body))
	assert.NoError(t, processor.Process(body))

	// At-least-once delivery: processing twice just notifies twice.
	assert.Len(t, notifier.notified, 2)
	mockRepo.AssertExpectations(t)
}
