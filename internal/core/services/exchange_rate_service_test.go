package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	mockCache    *MockRateCache
	service      portssvc.ExchangeRateSvcFacade
	now          time.Time
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.mockCache = new(MockRateCache)
	suite.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewExchangeRateService(
		suite.mockRateRepo,
		services.WithRateCache(suite.mockCache, time.Minute),
		services.WithExchangeRateClock(func() time.Time { return suite.now }),
		services.WithDefaultRates(map[domain.PaymentMethodCode]decimal.Decimal{
			domain.MethodCashARS: decimal.NewFromInt(1100),
			domain.MethodCashUSD: decimal.NewFromInt(1),
		}),
	)
}

func (suite *ExchangeRateServiceTestSuite) TearDownTest() {
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestGetRate_CacheHit() {
	ctx := context.Background()
	cached := &domain.ExchangeRateEntry{ClientID: "c1", MethodCode: domain.MethodCashARS, Rate: decimal.NewFromInt(1100)}
	suite.mockCache.On("Get", ctx, "c1", domain.MethodCashARS).Return(cached, true, nil).Once()

	rate, err := suite.service.GetRate(ctx, "c1", domain.MethodCashARS)

	suite.Require().NoError(err)
	suite.Equal(cached, rate)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_CacheMissPopulatesCache() {
	ctx := context.Background()
	stored := &domain.ExchangeRateEntry{ClientID: "c1", MethodCode: domain.MethodWireARS, Rate: decimal.NewFromInt(1100)}
	suite.mockCache.On("Get", ctx, "c1", domain.MethodWireARS).Return(nil, false, nil).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, "c1", domain.MethodWireARS).Return(stored, nil).Once()
	suite.mockCache.On("Set", ctx, *stored, time.Minute).Return(nil).Once()

	rate, err := suite.service.GetRate(ctx, "c1", domain.MethodWireARS)

	suite.Require().NoError(err)
	suite.Equal("1100", rate.Rate.String())
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_CacheFailureFallsBackToStore() {
	ctx := context.Background()
	stored := &domain.ExchangeRateEntry{ClientID: "c1", MethodCode: domain.MethodCashUSD, Rate: decimal.NewFromInt(1)}
	suite.mockCache.On("Get", ctx, "c1", domain.MethodCashUSD).Return(nil, false, errors.New("redis down")).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, "c1", domain.MethodCashUSD).Return(stored, nil).Once()
	suite.mockCache.On("Set", ctx, *stored, time.Minute).Return(errors.New("redis down")).Once()

	rate, err := suite.service.GetRate(ctx, "c1", domain.MethodCashUSD)

	suite.Require().NoError(err)
	suite.Equal(stored, rate)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_NotConfigured() {
	ctx := context.Background()
	suite.mockCache.On("Get", ctx, "c1", domain.MethodBrokerARSToUSD).Return(nil, false, nil).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, "c1", domain.MethodBrokerARSToUSD).Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.GetRate(ctx, "c1", domain.MethodBrokerARSToUSD)

	suite.Nil(rate)
	appErr, ok := apperrors.AsAppError(err)
	suite.Require().True(ok)
	suite.Equal(apperrors.KindRateNotConfigured, appErr.Kind)
	suite.Equal(string(domain.MethodBrokerARSToUSD), appErr.Subject)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_StorageFailure() {
	ctx := context.Background()
	suite.mockCache.On("Get", ctx, "c1", domain.MethodCashARS).Return(nil, false, nil).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, "c1", domain.MethodCashARS).Return(nil, errors.New("connection reset")).Once()

	_, err := suite.service.GetRate(ctx, "c1", domain.MethodCashARS)

	suite.Equal(apperrors.KindStorageFailure, apperrors.KindOf(err))
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_UnknownMethod() {
	_, err := suite.service.GetRate(context.Background(), "c1", "crypto_btc")
	suite.Equal(apperrors.KindInvalidPaymentMethod, apperrors.KindOf(err))
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_SavesAndWritesThrough() {
	ctx := context.Background()
	expected := domain.ExchangeRateEntry{
		ClientID:   "c1",
		MethodCode: domain.MethodCashARS,
		Rate:       decimal.NewFromInt(1200),
		UpdatedAt:  suite.now,
		UpdatedBy:  "admin",
	}
	suite.mockRateRepo.On("SaveExchangeRate", ctx, expected).Return(nil).Once()
	suite.mockCache.On("Set", ctx, expected, time.Minute).Return(nil).Once()

	rate, err := suite.service.SetRate(ctx, "c1", domain.MethodCashARS, decimal.NewFromInt(1200), "admin")

	suite.Require().NoError(err)
	suite.Equal(expected, *rate)
	suite.mockCache.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_CacheWriteFailureEvicts() {
	ctx := context.Background()
	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRateEntry")).Return(nil).Once()
	suite.mockCache.On("Set", ctx, mock.AnythingOfType("domain.ExchangeRateEntry"), time.Minute).Return(errors.New("redis down")).Once()
	suite.mockCache.On("Delete", ctx, "c1", domain.MethodCashARS).Return(nil).Once()

	_, err := suite.service.SetRate(ctx, "c1", domain.MethodCashARS, decimal.NewFromInt(1200), "admin")

	suite.Require().NoError(err)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_RejectsUnstorableRates() {
	for _, r := range []string{"0", "-1100", "1100.123456789", "1000000000000"} {
		_, err := suite.service.SetRate(context.Background(), "c1", domain.MethodCashARS, decimal.RequireFromString(r), "admin")
		suite.Equal(apperrors.KindInvalidRate, apperrors.KindOf(err), r)
	}
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_SaveFailureKeepsCache() {
	ctx := context.Background()
	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRateEntry")).Return(errors.New("disk full")).Once()

	_, err := suite.service.SetRate(ctx, "c1", domain.MethodCashARS, decimal.NewFromInt(1200), "admin")

	suite.Equal(apperrors.KindStorageFailure, apperrors.KindOf(err))
	suite.mockCache.AssertNotCalled(suite.T(), "Set", mock.Anything, mock.Anything, mock.Anything)
	suite.mockCache.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_AcceptsEightDecimalPlaces() {
	ctx := context.Background()
	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRateEntry")).Return(nil).Once()
	suite.mockCache.On("Set", ctx, mock.AnythingOfType("domain.ExchangeRateEntry"), time.Minute).Return(nil).Once()

	rate, err := suite.service.SetRate(ctx, "c1", domain.MethodCashARS, decimal.RequireFromString("1100.12345678"), "admin")

	suite.Require().NoError(err)
	suite.Equal("1100.12345678", rate.Rate.String())
}

// A read that loaded the previous row before SetRate committed must not put
// that row back into the cache.
func (suite *ExchangeRateServiceTestSuite) TestGetRate_ConcurrentSetRateWins() {
	ctx := context.Background()
	repo := new(MockExchangeRateRepository)
	rateCache := newVersionedRateCache()
	clock := suite.now
	svc := services.NewExchangeRateService(repo,
		services.WithRateCache(rateCache, time.Minute),
		services.WithExchangeRateClock(func() time.Time { return clock }),
	)

	previous := &domain.ExchangeRateEntry{
		ClientID:   "c1",
		MethodCode: domain.MethodCashARS,
		Rate:       decimal.NewFromInt(1000),
		UpdatedAt:  suite.now.Add(-time.Hour),
	}
	loaded := make(chan struct{})
	resume := make(chan struct{})
	repo.On("FindExchangeRate", mock.Anything, "c1", domain.MethodCashARS).Return(previous, nil).Once().Run(func(mock.Arguments) {
		close(loaded)
		<-resume
	})
	repo.On("SaveExchangeRate", mock.Anything, mock.AnythingOfType("domain.ExchangeRateEntry")).Return(nil).Once()

	staleRead := make(chan *domain.ExchangeRateEntry, 1)
	go func() {
		rate, err := svc.GetRate(ctx, "c1", domain.MethodCashARS)
		suite.NoError(err)
		staleRead <- rate
	}()

	<-loaded
	_, err := svc.SetRate(ctx, "c1", domain.MethodCashARS, decimal.NewFromInt(1200), "admin")
	suite.Require().NoError(err)
	close(resume)
	suite.Equal("1000", (<-staleRead).Rate.String())

	current, err := svc.GetRate(ctx, "c1", domain.MethodCashARS)
	suite.Require().NoError(err)
	suite.Equal("1200", current.Rate.String())
	repo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSeedDefaultRates_NeverOverwrites() {
	ctx := context.Background()
	// cash_ars already configured, cash_usd absent.
	suite.mockRateRepo.On("InsertExchangeRateIfAbsent", ctx, mock.MatchedBy(func(e domain.ExchangeRateEntry) bool {
		return e.MethodCode == domain.MethodCashARS
	})).Return(false, nil).Once()
	suite.mockRateRepo.On("InsertExchangeRateIfAbsent", ctx, mock.MatchedBy(func(e domain.ExchangeRateEntry) bool {
		return e.MethodCode == domain.MethodCashUSD
	})).Return(true, nil).Once()
	suite.mockCache.On("Delete", ctx, "c1", domain.MethodCashUSD).Return(nil).Once()

	seeded, err := suite.service.SeedDefaultRates(ctx, "c1", "admin")

	suite.Require().NoError(err)
	suite.Require().Len(seeded, 1)
	suite.Equal(domain.MethodCashUSD, seeded[0].MethodCode)
	suite.Equal("admin", seeded[0].UpdatedBy)
}

func (suite *ExchangeRateServiceTestSuite) TestListRates() {
	ctx := context.Background()
	rates := []domain.ExchangeRateEntry{{ClientID: "c1", MethodCode: domain.MethodCashARS, Rate: decimal.NewFromInt(1100)}}
	suite.mockRateRepo.On("ListExchangeRates", ctx, "c1").Return(rates, nil).Once()

	got, err := suite.service.ListRates(ctx, "c1")

	suite.Require().NoError(err)
	suite.Equal(rates, got)

	_, err = suite.service.ListRates(ctx, " ")
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

// --- Run Test Suite ---
func TestExchangeRateService(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
