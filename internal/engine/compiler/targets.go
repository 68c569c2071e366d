package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.trai.ch/zerr"
)

// Artifacts are the shared outputs every target links against.
type Artifacts struct {
	Library string
	PCH     string
}

// BuildTargets compiles and links every target as an independent pool task and collects
// the outcomes in submission order. Failures are recorded, never returned.
//
// Waiting is bounded by the batch timeout across all targets and by the task timeout per
// target; a target that exceeds either is recorded as a synthetic compile failure and left
// running. Once the failure breaker trips, the remaining targets are counted as unreported.
func (o *Orchestrator) BuildTargets(ctx context.Context, targets []domain.TargetConfig, art Artifacts) domain.BatchReport {
	futures := make([]*pool.Future[*domain.TargetResult], len(targets))
	for i, t := range targets {
		futures[i] = pool.Submit(ctx, o.Pool, func(ctx context.Context) (*domain.TargetResult, error) {
			return o.buildTarget(ctx, t, art), nil
		})
	}

	batch := o.cfg.Timeouts.Batch
	if batch <= 0 {
		batch = domain.DefaultBatchTimeout
	}
	deadline := time.Now().Add(batch)
	breaker := pool.NewBreaker(o.cfg.MaxFailures)

	var report domain.BatchReport
	for i, f := range futures {
		if breaker.Tripped() {
			report.Unreported = len(futures) - i
			break
		}

		r := o.await(ctx, f, targets[i].Name, deadline)
		if errors.Is(r.Err, domain.ErrTaskTimeout) {
			report.TimedOut++
		}

		report.Targets = append(report.Targets, *r)
		if r.Failed() {
			report.Failures = append(report.Failures, *r)
		}
		breaker.Record(r.Failed())
		o.Metrics.ObserveTarget(r.State, r.CacheHit)
	}

	return report
}

// await waits for one target, turning a timeout or cancellation into a synthetic failure.
func (o *Orchestrator) await(
	ctx context.Context,
	f *pool.Future[*domain.TargetResult],
	name string,
	deadline time.Time,
) *domain.TargetResult {
	wait := o.cfg.Timeouts.Task
	if wait <= 0 {
		wait = domain.DefaultTaskTimeout
	}
	if remaining := time.Until(deadline); remaining < wait {
		wait = remaining
	}

	var (
		r   *domain.TargetResult
		err error
	)
	if wait <= 0 {
		select {
		case <-f.Done():
			r, err = f.Wait(ctx)
		default:
			err = zerr.Wrap(domain.ErrTaskTimeout, "batch deadline exceeded")
		}
	} else {
		r, err = f.WaitTimeout(ctx, wait)
	}

	if err == nil {
		return r
	}

	failed := domain.NewTargetResult(name)
	_ = failed.Advance(domain.StateCompiling)
	_ = failed.Advance(domain.StateCompileFailed)
	failed.Compile = domain.SyntheticFailure(err.Error())
	failed.Err = err
	o.Logger.Warn(name + ": " + err.Error())
	return failed
}

// buildTarget runs one target through the state machine.
func (o *Orchestrator) buildTarget(ctx context.Context, t domain.TargetConfig, art Artifacts) *domain.TargetResult {
	start := time.Now()
	r := domain.NewTargetResult(t.Name)
	defer func() { r.Duration = time.Since(start) }()

	_ = r.Advance(domain.StateCompiling)

	objDir := filepath.Join(domain.ObjDir(o.cfg.BuildDir), "targets", t.Name)
	objs := make([]string, 0, len(t.Sources))
	var output strings.Builder

	for _, src := range t.Sources {
		pch := ""
		if art.PCH != "" && o.PCHEligible(src) {
			pch = art.PCH
		}
		obj := o.objectPath(objDir, src)

		res, err := o.compile(ctx, src, obj, pch)
		output.WriteString(res.Output)
		if err != nil || !res.OK {
			r.Compile = domain.Result{OK: false, Output: output.String(), ExitCode: res.ExitCode}
			r.Err = err
			if err == nil {
				r.Err = toolError(domain.ErrCompileFailed, filepath.Base(src), res)
			} else {
				r.Compile.ExitCode = -1
			}
			_ = r.Advance(domain.StateCompileFailed)
			return r
		}
		objs = append(objs, obj)
	}

	r.Compile = domain.Result{OK: true, Output: output.String()}
	_ = r.Advance(domain.StateCompiled)
	_ = r.Advance(domain.StateLinking)

	o.link(ctx, r, objs, art.Library)
	return r
}

// link produces <bin>/<target>_<key><ext>, reusing an existing file with the same key.
func (o *Orchestrator) link(ctx context.Context, r *domain.TargetResult, objs []string, lib string) {
	flags := o.cfg.PlatformLinkFlags(o.goos)

	key, err := LinkKey(lib, objs, flags)
	if err != nil {
		o.linkFailed(r, domain.Result{OK: false, Output: err.Error(), ExitCode: -1}, err)
		return
	}
	r.CacheKey = key

	exe := filepath.Join(domain.BinDir(o.cfg.BuildDir), r.Name+"_"+key+domain.ExecutableExt(o.goos))
	r.Executable = exe

	if !o.noCache {
		if _, err := os.Stat(exe); err == nil {
			now := o.now()
			_ = os.Chtimes(exe, now, now)
			r.CacheHit = true
			r.Link = domain.Result{OK: true}
			_ = r.Advance(domain.StateLinked)
			return
		}
	}

	if err := os.MkdirAll(filepath.Dir(exe), domain.DirPerm); err != nil {
		o.linkFailed(r, domain.Result{OK: false, Output: err.Error(), ExitCode: -1}, err)
		return
	}

	res, err := o.invoke(ctx, "link", o.Toolchain.LinkCommand(exe, objs, lib, flags))
	if err != nil {
		o.linkFailed(r, res, err)
		return
	}
	if !res.OK {
		o.linkFailed(r, res, toolError(domain.ErrLinkFailed, r.Name, res))
		return
	}

	r.Link = res
	_ = r.Advance(domain.StateLinked)
}

func (o *Orchestrator) linkFailed(r *domain.TargetResult, res domain.Result, err error) {
	if r.Executable != "" {
		_ = os.Remove(r.Executable)
	}
	res.OK = false
	if res.ExitCode == 0 {
		res.ExitCode = -1
	}
	r.Link = res
	r.Err = err
	_ = r.Advance(domain.StateLinkFailed)
}
