package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// TabServiceName is the fully-qualified name of the TabService service.
const TabServiceName = "ninjatab.v1.TabService"

// Fully-qualified procedure names, usable as HTTP routes.
const (
	TabServiceCreateTabProcedure          = "/ninjatab.v1.TabService/CreateTab"
	TabServiceGetTabProcedure             = "/ninjatab.v1.TabService/GetTab"
	TabServiceListTabsProcedure           = "/ninjatab.v1.TabService/ListTabs"
	TabServiceDeleteTabProcedure          = "/ninjatab.v1.TabService/DeleteTab"
	TabServiceCreateBillProcedure         = "/ninjatab.v1.TabService/CreateBill"
	TabServiceGetBillProcedure            = "/ninjatab.v1.TabService/GetBill"
	TabServiceListBillsProcedure          = "/ninjatab.v1.TabService/ListBills"
	TabServiceSubmitBillSplitsProcedure   = "/ninjatab.v1.TabService/SubmitBillSplits"
	TabServiceUpdateBillStatusProcedure   = "/ninjatab.v1.TabService/UpdateBillStatus"
	TabServiceCreateExchangeRateProcedure = "/ninjatab.v1.TabService/CreateExchangeRate"
	TabServiceListExchangeRatesProcedure  = "/ninjatab.v1.TabService/ListExchangeRates"
	TabServiceConvertAmountProcedure      = "/ninjatab.v1.TabService/ConvertAmount"
	TabServiceGetTabBalancesProcedure     = "/ninjatab.v1.TabService/GetTabBalances"
	TabServiceSimplifyTabProcedure        = "/ninjatab.v1.TabService/SimplifyTab"
	TabServiceListSettlementsProcedure    = "/ninjatab.v1.TabService/ListSettlements"
	TabServiceMarkSettlementPaidProcedure = "/ninjatab.v1.TabService/MarkSettlementPaid"
)

// NewTabServiceHandler builds an HTTP handler serving every TabService
// procedure. It returns the path to mount the handler on.
func NewTabServiceHandler(svc *TabService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	routes := map[string]http.Handler{
		TabServiceCreateTabProcedure:          connect.NewUnaryHandler(TabServiceCreateTabProcedure, svc.CreateTab, opts...),
		TabServiceGetTabProcedure:             connect.NewUnaryHandler(TabServiceGetTabProcedure, svc.GetTab, opts...),
		TabServiceListTabsProcedure:           connect.NewUnaryHandler(TabServiceListTabsProcedure, svc.ListTabs, opts...),
		TabServiceDeleteTabProcedure:          connect.NewUnaryHandler(TabServiceDeleteTabProcedure, svc.DeleteTab, opts...),
		TabServiceCreateBillProcedure:         connect.NewUnaryHandler(TabServiceCreateBillProcedure, svc.CreateBill, opts...),
		TabServiceGetBillProcedure:            connect.NewUnaryHandler(TabServiceGetBillProcedure, svc.GetBill, opts...),
		TabServiceListBillsProcedure:          connect.NewUnaryHandler(TabServiceListBillsProcedure, svc.ListBills, opts...),
		TabServiceSubmitBillSplitsProcedure:   connect.NewUnaryHandler(TabServiceSubmitBillSplitsProcedure, svc.SubmitBillSplits, opts...),
		TabServiceUpdateBillStatusProcedure:   connect.NewUnaryHandler(TabServiceUpdateBillStatusProcedure, svc.UpdateBillStatus, opts...),
		TabServiceCreateExchangeRateProcedure: connect.NewUnaryHandler(TabServiceCreateExchangeRateProcedure, svc.CreateExchangeRate, opts...),
		TabServiceListExchangeRatesProcedure:  connect.NewUnaryHandler(TabServiceListExchangeRatesProcedure, svc.ListExchangeRates, opts...),
		TabServiceConvertAmountProcedure:      connect.NewUnaryHandler(TabServiceConvertAmountProcedure, svc.ConvertAmount, opts...),
		TabServiceGetTabBalancesProcedure:     connect.NewUnaryHandler(TabServiceGetTabBalancesProcedure, svc.GetTabBalances, opts...),
		TabServiceSimplifyTabProcedure:        connect.NewUnaryHandler(TabServiceSimplifyTabProcedure, svc.SimplifyTab, opts...),
		TabServiceListSettlementsProcedure:    connect.NewUnaryHandler(TabServiceListSettlementsProcedure, svc.ListSettlements, opts...),
		TabServiceMarkSettlementPaidProcedure: connect.NewUnaryHandler(TabServiceMarkSettlementPaidProcedure, svc.MarkSettlementPaid, opts...),
	}

	return "/" + TabServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// TabServiceClient is a client for TabService.
type TabServiceClient struct {
	createTab          *connect.Client[CreateTabRequest, CreateTabResponse]
	getTab             *connect.Client[GetTabRequest, GetTabResponse]
	listTabs           *connect.Client[ListTabsRequest, ListTabsResponse]
	deleteTab          *connect.Client[DeleteTabRequest, DeleteTabResponse]
	createBill         *connect.Client[CreateBillRequest, CreateBillResponse]
	getBill            *connect.Client[GetBillRequest, GetBillResponse]
	listBills          *connect.Client[ListBillsRequest, ListBillsResponse]
	submitBillSplits   *connect.Client[SubmitBillSplitsRequest, SubmitBillSplitsResponse]
	updateBillStatus   *connect.Client[UpdateBillStatusRequest, UpdateBillStatusResponse]
	createExchangeRate *connect.Client[CreateExchangeRateRequest, CreateExchangeRateResponse]
	listExchangeRates  *connect.Client[ListExchangeRatesRequest, ListExchangeRatesResponse]
	convertAmount      *connect.Client[ConvertAmountRequest, ConvertAmountResponse]
	getTabBalances     *connect.Client[GetTabBalancesRequest, GetTabBalancesResponse]
	simplifyTab        *connect.Client[SimplifyTabRequest, SimplifyTabResponse]
	listSettlements    *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	markSettlementPaid *connect.Client[MarkSettlementPaidRequest, MarkSettlementPaidResponse]
}

// NewTabServiceClient builds a client for the TabService mounted at baseURL
// (for example, http://localhost:8080).
func NewTabServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TabServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &TabServiceClient{
		createTab:          connect.NewClient[CreateTabRequest, CreateTabResponse](httpClient, baseURL+TabServiceCreateTabProcedure, opts...),
		getTab:             connect.NewClient[GetTabRequest, GetTabResponse](httpClient, baseURL+TabServiceGetTabProcedure, opts...),
		listTabs:           connect.NewClient[ListTabsRequest, ListTabsResponse](httpClient, baseURL+TabServiceListTabsProcedure, opts...),
		deleteTab:          connect.NewClient[DeleteTabRequest, DeleteTabResponse](httpClient, baseURL+TabServiceDeleteTabProcedure, opts...),
		createBill:         connect.NewClient[CreateBillRequest, CreateBillResponse](httpClient, baseURL+TabServiceCreateBillProcedure, opts...),
		getBill:            connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+TabServiceGetBillProcedure, opts...),
		listBills:          connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+TabServiceListBillsProcedure, opts...),
		submitBillSplits:   connect.NewClient[SubmitBillSplitsRequest, SubmitBillSplitsResponse](httpClient, baseURL+TabServiceSubmitBillSplitsProcedure, opts...),
		updateBillStatus:   connect.NewClient[UpdateBillStatusRequest, UpdateBillStatusResponse](httpClient, baseURL+TabServiceUpdateBillStatusProcedure, opts...),
		createExchangeRate: connect.NewClient[CreateExchangeRateRequest, CreateExchangeRateResponse](httpClient, baseURL+TabServiceCreateExchangeRateProcedure, opts...),
		listExchangeRates:  connect.NewClient[ListExchangeRatesRequest, ListExchangeRatesResponse](httpClient, baseURL+TabServiceListExchangeRatesProcedure, opts...),
		convertAmount:      connect.NewClient[ConvertAmountRequest, ConvertAmountResponse](httpClient, baseURL+TabServiceConvertAmountProcedure, opts...),
		getTabBalances:     connect.NewClient[GetTabBalancesRequest, GetTabBalancesResponse](httpClient, baseURL+TabServiceGetTabBalancesProcedure, opts...),
		simplifyTab:        connect.NewClient[SimplifyTabRequest, SimplifyTabResponse](httpClient, baseURL+TabServiceSimplifyTabProcedure, opts...),
		listSettlements:    connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+TabServiceListSettlementsProcedure, opts...),
		markSettlementPaid: connect.NewClient[MarkSettlementPaidRequest, MarkSettlementPaidResponse](httpClient, baseURL+TabServiceMarkSettlementPaidProcedure, opts...),
	}
}

func (c *TabServiceClient) CreateTab(ctx context.Context, req *connect.Request[CreateTabRequest]) (*connect.Response[CreateTabResponse], error) {
	return c.createTab.CallUnary(ctx, req)
}

func (c *TabServiceClient) GetTab(ctx context.Context, req *connect.Request[GetTabRequest]) (*connect.Response[GetTabResponse], error) {
	return c.getTab.CallUnary(ctx, req)
}

func (c *TabServiceClient) ListTabs(ctx context.Context, req *connect.Request[ListTabsRequest]) (*connect.Response[ListTabsResponse], error) {
	return c.listTabs.CallUnary(ctx, req)
}

func (c *TabServiceClient) DeleteTab(ctx context.Context, req *connect.Request[DeleteTabRequest]) (*connect.Response[DeleteTabResponse], error) {
	return c.deleteTab.CallUnary(ctx, req)
}

func (c *TabServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *TabServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *TabServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *TabServiceClient) SubmitBillSplits(ctx context.Context, req *connect.Request[SubmitBillSplitsRequest]) (*connect.Response[SubmitBillSplitsResponse], error) {
	return c.submitBillSplits.CallUnary(ctx, req)
}

func (c *TabServiceClient) UpdateBillStatus(ctx context.Context, req *connect.Request[UpdateBillStatusRequest]) (*connect.Response[UpdateBillStatusResponse], error) {
	return c.updateBillStatus.CallUnary(ctx, req)
}

func (c *TabServiceClient) CreateExchangeRate(ctx context.Context, req *connect.Request[CreateExchangeRateRequest]) (*connect.Response[CreateExchangeRateResponse], error) {
	return c.createExchangeRate.CallUnary(ctx, req)
}

func (c *TabServiceClient) ListExchangeRates(ctx context.Context, req *connect.Request[ListExchangeRatesRequest]) (*connect.Response[ListExchangeRatesResponse], error) {
	return c.listExchangeRates.CallUnary(ctx, req)
}

func (c *TabServiceClient) ConvertAmount(ctx context.Context, req *connect.Request[ConvertAmountRequest]) (*connect.Response[ConvertAmountResponse], error) {
	return c.convertAmount.CallUnary(ctx, req)
}

func (c *TabServiceClient) GetTabBalances(ctx context.Context, req *connect.Request[GetTabBalancesRequest]) (*connect.Response[GetTabBalancesResponse], error) {
	return c.getTabBalances.CallUnary(ctx, req)
}

func (c *TabServiceClient) SimplifyTab(ctx context.Context, req *connect.Request[SimplifyTabRequest]) (*connect.Response[SimplifyTabResponse], error) {
	return c.simplifyTab.CallUnary(ctx, req)
}

func (c *TabServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *TabServiceClient) MarkSettlementPaid(ctx context.Context, req *connect.Request[MarkSettlementPaidRequest]) (*connect.Response[MarkSettlementPaidResponse], error) {
	return c.markSettlementPaid.CallUnary(ctx, req)
}
