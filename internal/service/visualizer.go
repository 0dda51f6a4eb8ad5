package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/trackmap/internal/config"
	"github.com/UnknownOlympus/trackmap/internal/discovery"
	"github.com/UnknownOlympus/trackmap/internal/metrics"
	"github.com/UnknownOlympus/trackmap/internal/models"
	"github.com/UnknownOlympus/trackmap/internal/render"
	"github.com/UnknownOlympus/trackmap/internal/repository"
	"github.com/UnknownOlympus/trackmap/internal/source"
)

// ErrNoData is returned when a run produced no tracks to draw.
var ErrNoData = errors.New("no GPS data available to visualize")

var progressMessages = map[source.Type]string{
	source.TypeKML: "Processing KML file",
	source.TypeKMZ: "Processing KMZ file",
	source.TypeGPX: "Processing GPX file",
}

// VisualizerService reads every track file of a directory and renders them on a map.
type VisualizerService struct {
	log        *slog.Logger                  // Logger for logging service activities
	repo       repository.Interface          // Filesystem access for discovery and artifacts
	readers    map[source.Type]source.Reader // Readers per source format
	renderer   render.Renderer               // Renderer producing the map document
	metrics    *metrics.Metrics              // Metrics for tracking run results
	numWorkers int                           // Number of concurrent workers reading files
	outputMode string                        // config.OutputModeBatch or config.OutputModePerFile
	includeGPX bool                          // Whether GPX files are discovered
}

// job is one file to read; idx is its position in discovery order.
type job struct {
	idx  int
	path string
	typ  source.Type
}

// FileResult is the outcome of reading one discovered file.
type FileResult struct {
	Path  string
	Type  source.Type
	Track *models.Track
	Err   error
}

// Report summarises a run.
type Report struct {
	Results   []FileResult // Results in discovery order
	Batch     models.Batch // Batch holds the successfully read tracks
	Artifacts []string     // Artifacts lists the written map files
}

// Failed returns the results that did not produce a track.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}

	return failed
}

// NewVisualizerService creates a new instance of VisualizerService.
// A worker count below 1 is treated as 1.
func NewVisualizerService(
	log *slog.Logger,
	repo repository.Interface,
	readers map[source.Type]source.Reader,
	renderer render.Renderer,
	metrics *metrics.Metrics,
	numWorkers int,
	outputMode string,
	includeGPX bool,
) *VisualizerService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &VisualizerService{
		log:        log,
		repo:       repo,
		readers:    readers,
		renderer:   renderer,
		metrics:    metrics,
		numWorkers: numWorkers,
		outputMode: outputMode,
		includeGPX: includeGPX,
	}
}

// Run scans dir, reads every track file and writes the map artifact(s).
// A file that fails to read is reported and left out of the batch; only
// discovery, rendering and writing errors abort the run.
// ErrNoData is returned, with the report, when no file produced a track.
func (vs *VisualizerService) Run(ctx context.Context, dir string) (*Report, error) {
	files, err := discovery.Discover(vs.repo, dir, vs.includeGPX)
	if err != nil {
		return nil, err
	}

	vs.log.InfoContext(ctx, "Track files discovered",
		"dir", dir,
		"kml", len(files.KML),
		"kmz", len(files.KMZ),
		"gpx", len(files.GPX),
	)

	report := &Report{Results: vs.processFiles(ctx, buildJobs(files))}
	if err = ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}

	for _, result := range report.Results {
		if result.Err != nil {
			continue
		}
		report.Batch.Tracks = append(report.Batch.Tracks, *result.Track)
	}

	if len(report.Batch.Tracks) == 0 {
		vs.log.InfoContext(ctx, "No GPS data available to visualize.")
		return report, ErrNoData
	}

	if vs.outputMode == config.OutputModePerFile {
		paths := perFilePaths(report.Batch.Tracks)
		for idx := range report.Batch.Tracks {
			track := report.Batch.Tracks[idx : idx+1]
			if err = vs.writeMap(ctx, report, paths[idx], track, idx); err != nil {
				return report, err
			}
		}
		return report, nil
	}

	last := report.Batch.Tracks[len(report.Batch.Tracks)-1]
	if err = vs.writeMap(ctx, report, render.OutputPath(last.SourceName), report.Batch.Tracks, 0); err != nil {
		return report, err
	}

	return report, nil
}

// writeMap renders tracks into one artifact at path.
func (vs *VisualizerService) writeMap(
	ctx context.Context,
	report *Report,
	path string,
	tracks []models.Track,
	colorOffset int,
) error {
	var buf bytes.Buffer
	if err := vs.renderer.Render(&buf, tracks, colorOffset); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := vs.repo.Save(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save map: %w", err)
	}

	vs.metrics.ArtifactsWritten.Inc()
	report.Artifacts = append(report.Artifacts, path)
	vs.log.InfoContext(ctx, "Map saved", "path", path, "tracks", len(tracks))

	return nil
}

// perFilePaths names one artifact per track. Sources sharing a stem, such as
// a.kml and a.kmz, keep their full name so neither map overwrites the other:
// a.kml.html and a.kmz.html.
func perFilePaths(tracks []models.Track) []string {
	seen := make(map[string]int, len(tracks))
	for _, track := range tracks {
		seen[render.OutputPath(track.SourceName)]++
	}

	paths := make([]string, len(tracks))
	for idx, track := range tracks {
		path := render.OutputPath(track.SourceName)
		if seen[path] > 1 {
			path = track.SourceName + render.OutputExt
		}
		paths[idx] = path
	}

	return paths
}

// buildJobs orders the discovered files: KML first, then KMZ, then GPX.
func buildJobs(files discovery.Files) []job {
	jobs := make([]job, 0, files.Total())
	add := func(paths []string, typ source.Type) {
		for _, path := range paths {
			jobs = append(jobs, job{idx: len(jobs), path: path, typ: typ})
		}
	}
	add(files.KML, source.TypeKML)
	add(files.KMZ, source.TypeKMZ)
	add(files.GPX, source.TypeGPX)

	return jobs
}

// processFiles starts a worker pool over the jobs and waits for all workers to finish.
// Each result lands at its job's index, so the order never depends on scheduling.
// Jobs not dispatched before ctx is cancelled get the context error.
func (vs *VisualizerService) processFiles(ctx context.Context, jobs []job) []FileResult {
	results := make([]FileResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	vs.log.DebugContext(ctx, "Starting worker pool", "jobs", len(jobs), "num_workers", vs.numWorkers)

	queue := make(chan job, len(jobs))
	var wgr sync.WaitGroup

	for i := 1; i <= vs.numWorkers; i++ {
		wgr.Add(1)
		go vs.worker(ctx, i, &wgr, queue, results)
	}

	for _, jb := range jobs {
		if err := ctx.Err(); err != nil {
			results[jb.idx] = FileResult{Path: jb.path, Type: jb.typ, Err: err}
			continue
		}
		queue <- jb
	}
	close(queue)

	wgr.Wait()
	vs.log.DebugContext(ctx, "Processing batch finished")

	return results
}

// worker reads files from the queue until it is closed. Every failure is logged,
// counted and stored in the result for that file; it never stops the batch.
func (vs *VisualizerService) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	queue <-chan job,
	results []FileResult,
) {
	defer wg.Done()
	for jb := range queue {
		vs.metrics.ActiveWorkers.Inc()
		vs.log.InfoContext(ctx, progressMessages[jb.typ], "path", jb.path, "worker", idx)

		result := FileResult{Path: jb.path, Type: jb.typ}
		format := string(jb.typ)

		reader, ok := vs.readers[jb.typ]
		if !ok {
			result.Err = fmt.Errorf("no reader configured for %s files", jb.typ)
		} else {
			startTime := time.Now()
			result.Track, result.Err = reader.Read(ctx, jb.path)
			vs.metrics.ReadSeconds.WithLabelValues(format).Observe(time.Since(startTime).Seconds())
		}

		if result.Err != nil {
			vs.log.ErrorContext(ctx, "Failed to read track file, skipping", "worker", idx, "path", jb.path, "error", result.Err)
			vs.metrics.FilesProcessed.WithLabelValues(format, "failure").Inc()
		} else {
			vs.log.DebugContext(ctx, "Track file read", "worker", idx, "path", jb.path, "points", len(result.Track.Points))
			vs.metrics.FilesProcessed.WithLabelValues(format, "success").Inc()
			vs.metrics.PointsExtracted.WithLabelValues(format).Add(float64(len(result.Track.Points)))
		}

		results[jb.idx] = result
		vs.metrics.ActiveWorkers.Dec()
	}
}
