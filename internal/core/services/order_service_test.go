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
	"github.com/SscSPs/resale_settlement/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockOrderRepo  *MockOrderRepository
	mockRecordRepo *MockSettlementRecordReader
	mockInventory  *MockInventoryGateway
	mockRateRepo   *MockExchangeRateRepository
	service        portssvc.OrderSvcFacade
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.mockRecordRepo = new(MockSettlementRecordReader)
	suite.mockInventory = new(MockInventoryGateway)
	suite.mockRateRepo = new(MockExchangeRateRepository)

	suite.mockRateRepo.On("FindExchangeRate", mock.Anything, "c1", domain.MethodCashUSD).
		Return(&domain.ExchangeRateEntry{ClientID: "c1", MethodCode: domain.MethodCashUSD, Rate: decimal.NewFromInt(1)}, nil).Maybe()

	validator := services.NewAllocationValidator(services.NewExchangeRateService(suite.mockRateRepo))
	suite.service = services.NewOrderService(
		suite.mockOrderRepo,
		suite.mockRecordRepo,
		validator,
		suite.mockInventory,
		services.WithReleaseTimeout(time.Second),
	)
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockInventory.AssertExpectations(suite.T())
}

func ticketFor(ref string) domain.SaleTicket {
	return domain.SaleTicket{TicketID: "t-" + ref, ItemRef: ref, PriorStatus: domain.ItemAvailable, Version: 2}
}

func twoItemRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerRef: "cust-1",
		VendorRef:   "vendor-1",
		LineItems: []dto.LineItemRequest{
			{InventoryItemRef: "imei-1", SalePrice: dto.USDRequest(decimal.NewFromInt(300))},
			{InventoryItemRef: "imei-2", SalePrice: dto.USDRequest(decimal.NewFromInt(200))},
		},
		Allocations: []dto.AllocationRequest{{MethodCode: "cash_usd", NativeAmount: dto.USDRequest(decimal.NewFromInt(500))}},
	}
}

func (suite *OrderServiceTestSuite) TestCreateOrder_StorageFailureReleasesTickets() {
	ctx := context.Background()
	suite.mockInventory.On("TrySell", ctx, "imei-1", "actor").Return(ticketFor("imei-1"), nil).Once()
	suite.mockInventory.On("TrySell", ctx, "imei-2", "actor").Return(ticketFor("imei-2"), nil).Once()
	suite.mockOrderRepo.On("SaveOrder", ctx, mock.AnythingOfType("domain.Order"), mock.Anything, (*domain.Debt)(nil)).
		Return(errors.New("connection refused")).Once()
	suite.mockInventory.On("ReleaseSale", mock.Anything, ticketFor("imei-2")).Return(nil).Once()
	suite.mockInventory.On("ReleaseSale", mock.Anything, ticketFor("imei-1")).Return(nil).Once()

	res, err := suite.service.CreateOrder(ctx, "c1", twoItemRequest(), "actor")

	suite.Nil(res)
	suite.Equal(apperrors.KindStorageFailure, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCreateOrder_ReleaseFailureStillReturnsOriginalError() {
	ctx := context.Background()
	suite.mockInventory.On("TrySell", ctx, "imei-1", "actor").Return(ticketFor("imei-1"), nil).Once()
	suite.mockInventory.On("TrySell", ctx, "imei-2", "actor").
		Return(domain.SaleTicket{}, apperrors.NewInventoryConflictError([]string{"imei-2"}, "sold")).Once()
	suite.mockInventory.On("ReleaseSale", mock.Anything, ticketFor("imei-1")).Return(errors.New("inventory offline")).Once()

	_, err := suite.service.CreateOrder(ctx, "c1", twoItemRequest(), "actor")

	appErr, ok := apperrors.AsAppError(err)
	suite.Require().True(ok)
	suite.Equal(apperrors.KindInventoryConflict, appErr.Kind)
	suite.Equal([]string{"imei-2"}, appErr.Items)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_ProbesRemainingItemsOnConflict() {
	ctx := context.Background()
	suite.mockInventory.On("TrySell", ctx, "imei-1", "actor").
		Return(domain.SaleTicket{}, apperrors.NewInventoryConflictError([]string{"imei-1"}, "sold")).Once()
	suite.mockInventory.On("GetItem", ctx, "imei-2").
		Return(nil, apperrors.NewNotFoundError("inventory item not found")).Once()

	_, err := suite.service.CreateOrder(ctx, "c1", twoItemRequest(), "actor")

	appErr, ok := apperrors.AsAppError(err)
	suite.Require().True(ok)
	suite.Equal([]string{"imei-1", "imei-2"}, appErr.Items)
	suite.mockInventory.AssertNotCalled(suite.T(), "ReleaseSale", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_ExpiredContextIsTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	suite.mockInventory.On("TrySell", ctx, "imei-1", "actor").Return(domain.SaleTicket{}, ctx.Err()).Once()

	_, err := suite.service.CreateOrder(ctx, "c1", twoItemRequest(), "actor")

	suite.Equal(apperrors.KindTimeout, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCreateOrder_PersistsDerivedFields() {
	ctx := context.Background()
	suite.mockInventory.On("TrySell", ctx, "imei-1", "actor").Return(ticketFor("imei-1"), nil).Once()
	suite.mockInventory.On("TrySell", ctx, "imei-2", "actor").Return(ticketFor("imei-2"), nil).Once()

	var saved domain.Order
	var savedRecords []domain.SettlementRecord
	suite.mockOrderRepo.On("SaveOrder", ctx, mock.AnythingOfType("domain.Order"), mock.Anything, (*domain.Debt)(nil)).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Order)
			savedRecords = args.Get(2).([]domain.SettlementRecord)
		}).Return(nil).Once()

	res, err := suite.service.CreateOrder(ctx, "c1", twoItemRequest(), "actor")

	suite.Require().NoError(err)
	suite.Equal(saved.OrderID, res.Order.OrderID)
	suite.Equal("500.00", saved.TotalUSD.StringFixed(2))
	suite.Len(saved.LineItems, 2)
	suite.Equal("cust-1", saved.CustomerDisplay)
	suite.Require().Len(savedRecords, 1)
	suite.Equal(domain.TargetOrder, savedRecords[0].TargetType)
	suite.Equal(saved.OrderID, savedRecords[0].TargetRef)
	suite.Equal("actor", savedRecords[0].CreatedBy)
}

func (suite *OrderServiceTestSuite) TestGetOrder_NotFound() {
	ctx := context.Background()
	suite.mockOrderRepo.On("FindOrderByID", ctx, "c1", "missing").Return(nil, apperrors.NewOrderNotFoundError("missing")).Once()

	_, err := suite.service.GetOrder(ctx, "c1", "missing")
	suite.Equal(apperrors.KindOrderNotFound, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestListOrders_MapsParams() {
	ctx := context.Background()
	status := "partial"
	customer := "cust-9"
	next := "next-page"
	suite.mockOrderRepo.On("ListOrders", ctx, "c1", mock.MatchedBy(func(f domain.OrderFilter) bool {
		return f.Limit == 20 && *f.PaymentStatus == domain.PaymentPartial && *f.CustomerRef == "cust-9"
	})).Return([]domain.Order{{OrderID: "o-1"}}, &next, nil).Once()

	page, err := suite.service.ListOrders(ctx, "c1", dto.ListOrdersParams{PaymentStatus: &status, CustomerRef: &customer})

	suite.Require().NoError(err)
	suite.Len(page.Orders, 1)
	suite.Equal(&next, page.NextToken)
}

func TestOrderService(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
