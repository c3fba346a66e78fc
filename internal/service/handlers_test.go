package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swap_store/internal/app"
	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
	"swap_store/internal/pkg/auth"
	"swap_store/internal/pkg/logger"
	"swap_store/internal/storage"
	"swap_store/internal/storage/mocks"
)

var testSecret = []byte("test-secret")

func testRequest(t *testing.T, ts *httptest.Server, method, path string, requestBody []byte) (*http.Response, string) {
	return testRequestWithAuth(t, ts, method, path, requestBody, "")
}

func testRequestWithAuth(t *testing.T, ts *httptest.Server, method, path string, requestBody []byte, token string) (*http.Response, string) {
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func newTestServer(db storage.Storage) *httptest.Server {
	appInstance := app.NewApp(db, logger.Nop())
	service := NewService(appInstance, "localhost:8080", testSecret, 5*time.Second, logger.Nop())
	return httptest.NewServer(service.NewRouter())
}

func tokenFor(t *testing.T, id uuid.UUID, role models.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, id, role)
	require.NoError(t, err)
	return token
}

func TestHandlers_Gomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockStorage(ctrl)
	testServer := newTestServer(mockDB)
	defer testServer.Close()

	userID := uuid.New()
	userToken := tokenFor(t, userID, models.RoleUser)
	itemID := uuid.New()

	type expectedData struct {
		expectedContentType string
		expectedStatusCode  int
		expectedBody        string
	}

	testCases := []struct {
		name        string
		method      string
		path        string
		token       string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Create item without token",
			method:      http.MethodPost,
			path:        "/items",
			requestBody: []byte(`{}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusUnauthorized,
				expectedBody:        "{\"errors\":\"missing auth header\",\"code\":401}\n",
			},
		},
		{
			name:        "Create item with invalid JSON",
			method:      http.MethodPost,
			path:        "/items",
			token:       userToken,
			requestBody: []byte("some body"),
			setupMock:   func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"invalid character 's' looking for beginning of value\",\"code\":400}\n",
			},
		},
		{
			name:        "Create item with missing color",
			method:      http.MethodPost,
			path:        "/items",
			token:       userToken,
			requestBody: []byte(`{"title":"Scarf","description":"Warm","category":"clothing","condition":"good","images":["https://img.example/1.jpg"]}`),
			setupMock: func() {
				mockDB.EXPECT().EnsureUser(gomock.Any(), userID, models.RoleUser, gomock.Any()).
					DoAndReturn(func(ctx context.Context, id uuid.UUID, role models.Role, now time.Time) (*models.User, error) {
						return ledger.NewUser(id, role, now), nil
					})
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"Please specify the color\",\"kind\":\"validation\",\"code\":400}\n",
			},
		},
		{
			name:      "Get item with malformed id",
			method:    http.MethodGet,
			path:      "/items/not-a-uuid",
			setupMock: func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"invalid id: not-a-uuid\",\"code\":400}\n",
			},
		},
		{
			name:   "Get missing item",
			method: http.MethodGet,
			path:   "/items/" + itemID.String(),
			setupMock: func() {
				mockDB.EXPECT().GetItem(gomock.Any(), itemID).Return(nil, apperr.NotFound("Item not found"))
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusNotFound,
				expectedBody:        "{\"errors\":\"Item not found\",\"kind\":\"not_found\",\"code\":404}\n",
			},
		},
		{
			name:   "Delete item of another user",
			method: http.MethodDelete,
			path:   "/items/" + itemID.String(),
			token:  userToken,
			setupMock: func() {
				mockDB.EXPECT().DeleteItem(gomock.Any(), itemID, models.Actor{ID: userID, Role: models.RoleUser}, gomock.Any()).
					Return(apperr.Permission("You can only delete your own items"))
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusForbidden,
				expectedBody:        "{\"errors\":\"You can only delete your own items\",\"kind\":\"permission\",\"code\":403}\n",
			},
		},
		{
			name:   "Delete item in an active swap",
			method: http.MethodDelete,
			path:   "/items/" + itemID.String(),
			token:  userToken,
			setupMock: func() {
				mockDB.EXPECT().DeleteItem(gomock.Any(), itemID, gomock.Any(), gomock.Any()).
					Return(apperr.Conflict("Cannot delete item that is in an active swap"))
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"Cannot delete item that is in an active swap\",\"kind\":\"conflict\",\"code\":400}\n",
			},
		},
		{
			name:      "Admin stats as regular user",
			method:    http.MethodGet,
			path:      "/items/admin/stats",
			token:     userToken,
			setupMock: func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusForbidden,
				expectedBody:        "{\"errors\":\"admin role required\",\"code\":403}\n",
			},
		},
		{
			name:        "Respond with unknown action",
			method:      http.MethodPatch,
			path:        "/swap-requests/" + uuid.NewString() + "/respond",
			token:       userToken,
			requestBody: []byte(`{"action":"maybe"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"action must be one of: accept, decline\",\"kind\":\"validation\",\"code\":400}\n",
			},
		},
		{
			name:      "List items with malformed minPoints",
			method:    http.MethodGet,
			path:      "/items?minPoints=ten",
			setupMock: func() {},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusBadRequest,
				expectedBody:        "{\"errors\":\"minPoints must be an integer\",\"kind\":\"validation\",\"code\":400}\n",
			},
		},
		{
			name:   "Profile when the database is down",
			method: http.MethodGet,
			path:   "/users/me",
			token:  userToken,
			setupMock: func() {
				mockDB.EXPECT().EnsureUser(gomock.Any(), userID, models.RoleUser, gomock.Any()).
					Return(nil, errors.New("connection refused"))
			},
			expected: expectedData{
				expectedContentType: "application/json",
				expectedStatusCode:  http.StatusInternalServerError,
				expectedBody:        "{\"errors\":\"connection refused\",\"code\":500}\n",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequestWithAuth(t, testServer, tc.method, tc.path, tc.requestBody, tc.token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			assert.Equal(t, tc.expected.expectedContentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, tc.expected.expectedBody, body)
		})
	}
}

func TestCreateItemHandler_Gomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockStorage(ctrl)
	testServer := newTestServer(mockDB)
	defer testServer.Close()

	userID := uuid.New()
	mockDB.EXPECT().EnsureUser(gomock.Any(), userID, models.RoleUser, gomock.Any()).
		DoAndReturn(func(ctx context.Context, id uuid.UUID, role models.Role, now time.Time) (*models.User, error) {
			return ledger.NewUser(id, role, now), nil
		})
	mockDB.EXPECT().CreateItem(gomock.Any(), gomock.AssignableToTypeOf(&models.Item{})).
		DoAndReturn(func(ctx context.Context, item *models.Item) error {
			assert.Equal(t, userID, item.Owner)
			return nil
		})

	requestBody := []byte(`{"title":"Scarf","description":"Warm","category":"electronics","condition":"new","color":"red","images":["https://img.example/1.jpg"]}`)
	resp, body := testRequestWithAuth(t, testServer, http.MethodPost, "/items", requestBody, tokenFor(t, userID, ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item models.Item
	require.NoError(t, json.Unmarshal([]byte(body), &item))
	assert.Equal(t, 100, item.PointsValue)
	assert.Equal(t, models.ItemAvailable, item.Status)
}

func TestListItemsHandler_Gomock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockStorage(ctrl)
	testServer := newTestServer(mockDB)
	defer testServer.Close()

	item := models.Item{ID: uuid.New(), Title: "Boots", PointsValue: 42, Status: models.ItemAvailable}
	mockDB.EXPECT().ListItems(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, query models.ItemQuery) (*models.ItemPage, error) {
			assert.Equal(t, []models.ItemStatus{models.ItemAvailable}, query.Filter.Statuses)
			assert.Equal(t, models.CategoryShoes, query.Filter.Category)
			assert.Equal(t, 10, *query.Filter.MinPoints)
			assert.Equal(t, models.SortPointsDesc, query.Sort)
			assert.Equal(t, 2, query.Page)
			assert.Equal(t, 5, query.PageSize)
			return &models.ItemPage{Items: []models.Item{item}, Total: 6, Page: 2, PageSize: 5}, nil
		})

	resp, body := testRequest(t, testServer, http.MethodGet,
		"/items?category=shoes&minPoints=10&sort=-pointsValue&page=2&limit=5&fields=title,pointsValue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expected := fmt.Sprintf(`{"results":1,"totalItems":6,"page":2,"items":[{"id":"%s","title":"Boots","pointsValue":42}]}`, item.ID)
	assert.JSONEq(t, expected, body)
}

type scenarioClient struct {
	t      *testing.T
	server *httptest.Server
}

func (c scenarioClient) do(method, path, token string, payload any, out any) int {
	c.t.Helper()
	var requestBody []byte
	if payload != nil {
		var err error
		requestBody, err = json.Marshal(payload)
		require.NoError(c.t, err)
	}
	resp, body := testRequestWithAuth(c.t, c.server, method, path, requestBody, token)
	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		require.NoError(c.t, json.Unmarshal([]byte(body), out))
	}
	return resp.StatusCode
}

func scarf() models.CreateItemRequest {
	return models.CreateItemRequest{
		Title:       "Wool scarf",
		Description: "Hand knitted",
		Category:    models.CategoryClothing,
		Condition:   models.ConditionGood,
		Color:       "red",
		Images:      []string{"https://img.example/scarf.jpg"},
	}
}

func TestSwapScenario(t *testing.T) {
	testServer := newTestServer(storage.NewMemory())
	defer testServer.Close()
	client := scenarioClient{t: t, server: testServer}

	ownerID, bidderID, buyerID := uuid.New(), uuid.New(), uuid.New()
	owner := tokenFor(t, ownerID, models.RoleUser)
	bidder := tokenFor(t, bidderID, models.RoleUser)
	buyer := tokenFor(t, buyerID, models.RoleUser)

	var wanted, offered models.Item
	require.Equal(t, http.StatusCreated, client.do(http.MethodPost, "/items", owner, scarf(), &wanted))
	require.Equal(t, http.StatusCreated, client.do(http.MethodPost, "/items", bidder, scarf(), &offered))
	assert.Equal(t, 35, wanted.PointsValue)

	var itemRequest, pointsRequest models.SwapRequest
	require.Equal(t, http.StatusCreated, client.do(http.MethodPost, "/items/"+wanted.ID.String()+"/swap-request", bidder,
		models.CreateSwapRequest{SwapType: models.SwapItemForItem, OfferedItemID: &offered.ID}, &itemRequest))
	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodPost, "/items/"+wanted.ID.String()+"/swap-request", buyer,
		models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 27}, nil))
	missing := uuid.New()
	assert.Equal(t, http.StatusNotFound, client.do(http.MethodPost, "/items/"+wanted.ID.String()+"/swap-request", buyer,
		models.CreateSwapRequest{SwapType: models.SwapItemForItem, OfferedItemID: &missing}, nil))
	require.Equal(t, http.StatusCreated, client.do(http.MethodPost, "/items/"+wanted.ID.String()+"/swap-request", buyer,
		models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 28}, &pointsRequest))
	assert.Equal(t, http.StatusNotFound, client.do(http.MethodPost, "/items/"+uuid.NewString()+"/swap-request", buyer,
		models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 28}, nil))

	assert.Equal(t, http.StatusForbidden, client.do(http.MethodPatch, "/swap-requests/"+itemRequest.ID.String()+"/respond", bidder,
		models.RespondRequest{Action: models.ActionAccept}, nil))

	var accepted models.SwapRequest
	require.Equal(t, http.StatusOK, client.do(http.MethodPatch, "/swap-requests/"+itemRequest.ID.String()+"/respond", owner,
		models.RespondRequest{Action: models.ActionAccept, ResponseMessage: "Deal"}, &accepted))
	assert.Equal(t, models.SwapAccepted, accepted.Status)

	var sent models.SwapRequestsResponse
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/swap-requests/sent", buyer, nil, &sent))
	require.Equal(t, 1, sent.Results)
	assert.Equal(t, models.SwapDeclined, sent.SwapRequests[0].Status)
	assert.Equal(t, "Item no longer available", sent.SwapRequests[0].ResponseMessage)
	assert.Equal(t, models.DirectionSent, sent.SwapRequests[0].Direction)

	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodPatch, "/swap-requests/"+pointsRequest.ID.String()+"/cancel", buyer, nil, nil))

	var detail models.ItemDetail
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/items/"+wanted.ID.String(), "", nil, &detail))
	assert.Equal(t, models.ItemReserved, detail.Item.Status)

	var completed models.SwapRequest
	require.Equal(t, http.StatusOK, client.do(http.MethodPatch, "/swap-requests/"+itemRequest.ID.String()+"/complete", bidder,
		models.CompleteRequest{Rating: 4, Review: "Lovely scarf"}, &completed))
	assert.Equal(t, models.SwapCompleted, completed.Status)
	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodPatch, "/swap-requests/"+itemRequest.ID.String()+"/complete", owner,
		models.CompleteRequest{}, nil))

	var mine models.ItemsResponse
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/items/user/my-items", bidder, nil, &mine))
	require.Equal(t, 1, mine.Results)
	assert.Equal(t, wanted.ID.String(), mine.Items[0].(map[string]any)["id"])

	var profile models.UserProfile
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/users/me", owner, nil, &profile))
	assert.Equal(t, 1, profile.Statistics.TotalSwaps)
	assert.Equal(t, 1, profile.Statistics.Rating.Count)
	assert.Equal(t, 4.0, profile.Statistics.Rating.Average)
}

func TestAdminRoutes(t *testing.T) {
	testServer := newTestServer(storage.NewMemory())
	defer testServer.Close()
	client := scenarioClient{t: t, server: testServer}

	userID := uuid.New()
	user := tokenFor(t, userID, models.RoleUser)
	admin := tokenFor(t, uuid.New(), models.RoleAdmin)

	var item models.Item
	require.Equal(t, http.StatusCreated, client.do(http.MethodPost, "/items", user, scarf(), &item))

	var stats models.ItemStats
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/items/admin/stats", admin, nil, &stats))
	require.Len(t, stats.StatusStats, 1)
	assert.Equal(t, models.ItemAvailable, stats.StatusStats[0].Status)

	var adjusted models.User
	require.Equal(t, http.StatusOK, client.do(http.MethodPatch, "/users/"+userID.String()+"/points", admin,
		models.AdjustPointsRequest{Amount: -40, Reason: "refund"}, &adjusted))
	assert.Equal(t, 60, adjusted.Points)
	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodPatch, "/users/"+userID.String()+"/points", admin,
		models.AdjustPointsRequest{Amount: -61}, nil))
	assert.Equal(t, http.StatusForbidden, client.do(http.MethodPatch, "/users/"+userID.String()+"/points", user,
		models.AdjustPointsRequest{Amount: 10}, nil))

	var sweep models.SweepResult
	require.Equal(t, http.StatusOK, client.do(http.MethodPost, "/swap-requests/expired/sweep", admin, nil, &sweep))
	assert.Equal(t, models.SweepResult{}, sweep)

	var expired models.SwapRequestsResponse
	require.Equal(t, http.StatusOK, client.do(http.MethodGet, "/swap-requests/expired", admin, nil, &expired))
	assert.Equal(t, 0, expired.Results)
}
