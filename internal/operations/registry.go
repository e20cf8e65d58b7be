package operations

import (
	"context"
	"fmt"

	"github.com/roach88/shouldi/internal/catalog"
	"github.com/roach88/shouldi/internal/dataflow"
)

// Deps holds the clients the built-in operations call.
type Deps struct {
	PyPI       *PyPIClient
	Downloader *Downloader
	Safety     *SafetyChecker
	Bandit     *BanditScanner
}

// Implementations binds every built-in catalog operation to its function,
// in catalog order.
func Implementations(d Deps) ([]dataflow.Implementation, error) {
	funcs := map[string]dataflow.Func{
		catalog.OpPyPIPackageJSON: func(ctx context.Context, in any) (any, error) {
			pkg, err := asString(in)
			if err != nil {
				return nil, err
			}
			return d.PyPI.PackageJSON(ctx, pkg)
		},
		catalog.OpPyPILatestVersion: func(_ context.Context, in any) (any, error) {
			pj, err := asPackageJSON(in)
			if err != nil {
				return nil, err
			}
			return LatestVersion(pj)
		},
		catalog.OpPyPIPackageURL: func(_ context.Context, in any) (any, error) {
			pj, err := asPackageJSON(in)
			if err != nil {
				return nil, err
			}
			return SourceURL(pj)
		},
		catalog.OpPyPIPackageContent: func(ctx context.Context, in any) (any, error) {
			u, err := asString(in)
			if err != nil {
				return nil, err
			}
			return d.Downloader.Download(ctx, u)
		},
		catalog.OpSafetyCheck: func(ctx context.Context, in any) (any, error) {
			req, err := asString(in)
			if err != nil {
				return nil, err
			}
			return d.Safety.Check(ctx, req)
		},
		catalog.OpRunBandit: func(ctx context.Context, in any) (any, error) {
			dir, err := asString(in)
			if err != nil {
				return nil, err
			}
			return d.Bandit.Scan(ctx, dir)
		},
	}

	ops := catalog.Builtin().Operations()
	impls := make([]dataflow.Implementation, 0, len(ops))
	for _, op := range ops {
		fn, ok := funcs[op.Name]
		if !ok {
			return nil, fmt.Errorf("no implementation for built-in operation %q", op.Name)
		}
		impls = append(impls, dataflow.Implementation{Op: op, Run: fn})
	}
	return impls, nil
}

func asString(in any) (string, error) {
	s, ok := in.(string)
	if !ok {
		return "", fmt.Errorf("expected string input, got %T", in)
	}
	return s, nil
}

func asPackageJSON(in any) (*PackageJSON, error) {
	pj, ok := in.(*PackageJSON)
	if !ok {
		return nil, fmt.Errorf("expected package metadata input, got %T", in)
	}
	return pj, nil
}
