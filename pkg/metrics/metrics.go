package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PostsCreated counts successful post creations.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_posts_created_total",
		Help: "Number of posts created successfully.",
	})

	// PostsDeleted counts successful post deletions.
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_posts_deleted_total",
		Help: "Number of posts deleted successfully.",
	})

	// Uploads counts media files uploaded to the file store.
	Uploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_media_uploads_total",
		Help: "Number of media files uploaded.",
	})

	// Compensations counts compensating file deletions by the stage that failed.
	Compensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_compensations_total",
		Help: "Number of compensating cleanups run after a failed lifecycle step.",
	}, []string{"stage"})

	// OrphanedFiles counts best-effort file deletions that failed after the
	// owning document was already removed or repointed.
	OrphanedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_orphaned_files_total",
		Help: "Number of media files left dangling after best-effort cleanup failed.",
	})
)

// Serve exposes the prometheus registry on its own listener.
func Serve(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(":"+port, mux)
}
