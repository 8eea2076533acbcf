// Package pipeline turns resolved configuration into a versioned document and
// its on-disk artifact. It never prompts and never calls the gateway.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"gwspec/internal/config"
	"gwspec/internal/ledger"
	"gwspec/internal/model"
	"gwspec/internal/openapi"
	"gwspec/internal/publish"
)

// GenerateKeys are the identifiers a document cannot be built without.
var GenerateKeys = []model.IdentifierKey{model.UserPoolID, model.GatewayURL, model.Region, model.AccountID}

type Request struct {
	Identifiers model.Identifiers
	Services    []model.ServiceConfig
	LedgerPath  string
	OutputDir   string
	Format      openapi.Format
}

type Result struct {
	Document *openapi3.T
	Version  ledger.Version
	// VersionPersisted is false when the ledger could not be written; the next
	// run may then reissue Version.
	VersionPersisted bool
	ArtifactPath     string
	Body             []byte
}

type Pipeline struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{log: log}
}

// Run validates the request, reserves the next version, assembles the
// document and writes the artifact. Local failures are returned before any
// file other than the ledger is touched.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := config.ValidateServices(req.Services); err != nil {
		return Result{}, err
	}
	if err := req.Identifiers.Require(GenerateKeys...); err != nil {
		return Result{}, err
	}
	if len(req.Services) == 0 {
		p.log.Warn("no services configured, document will have no paths")
	}

	// The version is reserved before the document is built, so a failure
	// below still consumes it.
	l := ledger.New(req.LedgerPath, p.log)
	version, err := l.Reserve()
	persisted := true
	if err != nil {
		var werr *ledger.LedgerWriteError
		if !errors.As(err, &werr) {
			return Result{}, err
		}
		persisted = false
		p.log.Warn("version not persisted, the next run may repeat it", "version", version.String(), "error", err)
	}

	services := config.WithBackend(req.Services, req.Identifiers.GatewayURL)
	doc, err := openapi.Assemble(req.Identifiers.Title, version, services, req.Identifiers)
	if err != nil {
		return Result{}, err
	}
	p.log.Info("document assembled", "title", doc.Info.Title, "version", doc.Info.Version, "paths", doc.Paths.Len())

	path, body, err := publish.Persist(doc, req.OutputDir, req.Identifiers.Environment, req.Format)
	if err != nil {
		return Result{}, err
	}
	p.log.Info("artifact written", "path", path)

	return Result{
		Document:         doc,
		Version:          version,
		VersionPersisted: persisted,
		ArtifactPath:     path,
		Body:             body,
	}, nil
}
