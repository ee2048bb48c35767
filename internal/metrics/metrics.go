package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var IdentityCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "community_identity_cache_hits",
	Help: "Number of requests whose user was found in the session identity cache",
})

var IdentityCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "community_identity_cache_misses",
	Help: "Number of requests that ran identity reconciliation",
})

var IdentityRequestsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
	Name: "community_identity_requests_coalesced",
	Help: "Number of identity resolutions that shared a concurrent run for the same session",
})

var UsersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_users_created",
	Help: "Number of users created on first social login",
}, []string{"provider"})

var RoleSyncs = promauto.NewCounter(prometheus.CounterOpts{
	Name: "community_role_syncs",
	Help: "Number of times a live authentication was corrected to the stored role",
})

var ResolutionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_identity_resolution_failures",
	Help: "Number of identity resolutions that failed, by kind",
}, []string{"kind"})
