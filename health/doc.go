// Package health reports whether the cache can keep serving.
//
// StoreChecker grades record store utilization against warning and critical
// thresholds, and optionally flags eviction churn. BreakerChecker maps the
// network circuit breaker to a status: an open circuit leaves only
// cache-answerable requests working. An Aggregator runs checkers together and
// the HTTP handlers expose the result:
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	storeCheck, err := health.NewStoreChecker(st, health.StoreCheckerConfig{})
//	if err != nil {
//	    return err
//	}
//	agg.Register(storeCheck)
//	health.RegisterHandlers(mux, agg)
package health
