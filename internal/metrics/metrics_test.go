package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/recipes", "200"))
	RecordAPIRequest("GET", "/api/recipes", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/recipes", "200"))
	assert.Equal(t, before+1, after)

	unmatched := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordAPIRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, unmatched+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestDomainCounters(t *testing.T) {
	tests := []struct {
		name    string
		record  func()
		counter func() float64
	}{
		{
			name:    "membership add",
			record:  func() { RecordMembershipToggle("favorites", true) },
			counter: func() float64 { return testutil.ToFloat64(MembershipToggles.WithLabelValues("favorites", "add")) },
		},
		{
			name:    "membership remove",
			record:  func() { RecordMembershipToggle("cart", false) },
			counter: func() float64 { return testutil.ToFloat64(MembershipToggles.WithLabelValues("cart", "remove")) },
		},
		{
			name:    "recipe write",
			record:  func() { RecordRecipeWrite("create") },
			counter: func() float64 { return testutil.ToFloat64(RecipeWrites.WithLabelValues("create")) },
		},
		{
			name:    "shopping list",
			record:  RecordShoppingListDownload,
			counter: func() float64 { return testutil.ToFloat64(ShoppingListDownloads) },
		},
		{
			name:    "failed login",
			record:  func() { RecordLogin(false) },
			counter: func() float64 { return testutil.ToFloat64(Logins.WithLabelValues("failure")) },
		},
		{
			name:    "rate limited",
			record:  func() { RecordRateLimited("/api/auth/token/login") },
			counter: func() float64 { return testutil.ToFloat64(RateLimitedRequests.WithLabelValues("/api/auth/token/login")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.counter()
			tt.record()
			assert.Equal(t, before+1, tt.counter())
		})
	}
}
