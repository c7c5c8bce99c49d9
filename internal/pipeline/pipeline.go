// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the curation stages in order: quality scoring,
// interaction filtering, connectivity reduction, and expert grouping. Each
// stage starts only after the previous one has produced its full output.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/ppi-curator/internal/connectivity"
	"github.com/pdiddy/ppi-curator/internal/hierarchy"
	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/internal/source"
	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Stage names used in logs and EmptyResultError.
const (
	StageQuality      = "quality"
	StageInteractions = "interactions"
	StageConnectivity = "connectivity"
	StageGrouping     = "grouping"
)

// Result is the output of a run.
type Result struct {
	Proteins     []types.ProteinRecord
	Interactions []types.InteractionRecord
	Groups       []types.ExpertGroup
	Stats        *Statistics
}

// Pipeline runs one curation over a data directory.
type Pipeline struct {
	cfg    types.CurateConfig
	scorer *quality.Scorer
	logger *slog.Logger
	w      io.Writer
}

// New validates cfg and returns a Pipeline. Status lines go to w; a nil
// logger uses slog.Default.
func New(cfg types.CurateConfig, logger *slog.Logger, w io.Writer) (*Pipeline, error) {
	scorer, err := quality.NewScorer(cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("quality config: %w", err)
	}
	if t := cfg.Filter.ConfidenceThreshold; !(t >= 0 && t <= 1) {
		return nil, fmt.Errorf("confidence threshold %v outside [0,1]", t)
	}
	if err := hierarchy.ValidateGroupingConfig(cfg.Grouping); err != nil {
		return nil, fmt.Errorf("grouping config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{cfg: cfg, scorer: scorer, logger: logger, w: w}, nil
}

// Run executes every stage. Cancellation is checked between stages only.
// A stage that leaves no records fails the run with an EmptyResultError
// carrying the statistics gathered so far.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	st := &Statistics{}
	res := &Result{Stats: st}

	proteinPath, err := source.Resolve(p.cfg.DataDir, p.cfg.Inputs.ProteinInfo, source.ProteinInfo)
	if err != nil {
		return nil, err
	}
	linksInput := source.Links
	if p.cfg.Filter.Detailed {
		linksInput = source.DetailedLinks
	}
	linksPath, err := source.Resolve(p.cfg.DataDir, p.cfg.Inputs.Interactions, linksInput)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.runQuality(proteinPath, res); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.runInteractions(linksPath, linksInput, res); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.runConnectivity(res); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.runGrouping(res); err != nil {
		return nil, err
	}

	if err := p.summarize(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) runQuality(path string, res *Result) error {
	st := res.Stats
	p.logger.Info("stage started", "stage", StageQuality, "file", path, "threshold", p.scorer.Threshold())

	kept, qs, rs, err := ScoreProteins(path, p.scorer, p.cfg.ProteinBatchSize)
	if err != nil {
		return err
	}
	st.addInput(InputFile{Input: source.ProteinInfo, File: filepath.Base(path), Found: true, Read: rs})
	if err := setOnce(&st.Quality, StageQuality, qs); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "quality: %s of %s proteins retained (%s) at threshold %.2f, %s malformed lines\n",
		humanize.Comma(int64(qs.Retained)), humanize.Comma(int64(qs.Initial)),
		stats.FormatPercent(qs.RetentionRate), qs.Threshold, humanize.Comma(int64(rs.Malformed)))
	p.logger.Info("stage finished", "stage", StageQuality,
		"initial", qs.Initial, "retained", qs.Retained, "malformed", rs.Malformed)

	if len(kept) == 0 {
		reason := fmt.Sprintf("none of %d proteins reached quality threshold %v", qs.Initial, qs.Threshold)
		if qs.Initial == 0 {
			reason = fmt.Sprintf("no parsable protein records (%d malformed lines)", rs.Malformed)
		}
		return &EmptyResultError{Stage: StageQuality, Reason: reason, Stats: st}
	}
	res.Proteins = kept
	return nil
}

func (p *Pipeline) runInteractions(path string, in source.Input, res *Result) error {
	st := res.Stats
	threshold := p.cfg.Filter.ConfidenceThreshold
	p.logger.Info("stage started", "stage", StageInteractions, "file", path, "threshold", threshold)

	valid := types.NewIDSet()
	for _, pr := range res.Proteins {
		valid.Add(pr.ID)
	}
	kept, fs, rs, err := FilterInteractions(path, p.cfg.Filter.Detailed, valid, threshold, p.cfg.InteractionBatchSize)
	if err != nil {
		return err
	}
	st.addInput(InputFile{Input: in, File: filepath.Base(path), Found: true, Read: rs})
	if err := setOnce(&st.Interactions, StageInteractions, fs); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "interactions: %s of %s retained (%s confident, %s with known proteins), %s malformed lines\n",
		humanize.Comma(int64(fs.AfterProteins)), humanize.Comma(int64(fs.Raw)),
		humanize.Comma(int64(fs.AfterConfidence)), humanize.Comma(int64(fs.AfterProteins)),
		humanize.Comma(int64(rs.Malformed)))
	p.logger.Info("stage finished", "stage", StageInteractions,
		"raw", fs.Raw, "confident", fs.AfterConfidence, "retained", fs.AfterProteins, "malformed", rs.Malformed)

	if len(kept) == 0 {
		var reason string
		switch {
		case fs.Raw == 0:
			reason = fmt.Sprintf("no parsable interaction records (%d malformed lines)", rs.Malformed)
		case fs.AfterConfidence == 0:
			reason = fmt.Sprintf("confidence threshold %v rejected all %d interactions", threshold, fs.Raw)
		default:
			reason = fmt.Sprintf("none of %d confident interactions join two retained proteins", fs.AfterConfidence)
		}
		return &EmptyResultError{Stage: StageInteractions, Reason: reason, Stats: st}
	}
	res.Interactions = kept
	return nil
}

func (p *Pipeline) runConnectivity(res *Result) error {
	st := res.Stats
	p.logger.Info("stage started", "stage", StageConnectivity, "interactions", len(res.Interactions))

	cr := connectivity.Analyze(res.Interactions)
	if err := setOnce(&st.Connectivity, StageConnectivity, cr.Stats); err != nil {
		return err
	}
	proteins, interactions, rst := connectivity.ReduceToComponent(cr.Largest, res.Proteins, res.Interactions)
	if err := setOnce(&st.Reduction, "reduction", rst); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "connectivity: %s components, largest has %s of %s proteins; kept %s interactions\n",
		humanize.Comma(int64(cr.Stats.Components)), humanize.Comma(int64(cr.Stats.LargestSize)),
		humanize.Comma(int64(cr.Stats.Vertices)), humanize.Comma(int64(rst.InteractionsAfter)))
	p.logger.Info("stage finished", "stage", StageConnectivity,
		"components", cr.Stats.Components, "largest", cr.Stats.LargestSize,
		"proteins", rst.ProteinsAfter, "interactions", rst.InteractionsAfter)

	if len(proteins) == 0 || len(interactions) == 0 {
		return &EmptyResultError{Stage: StageConnectivity, Reason: "largest component is empty", Stats: st}
	}
	res.Proteins = proteins
	res.Interactions = interactions
	return nil
}

func (p *Pipeline) runGrouping(res *Result) error {
	st := res.Stats
	p.logger.Info("stage started", "stage", StageGrouping, "mode", p.cfg.Grouping.Mode)

	cd, err := LoadClusters(p.cfg.DataDir, p.cfg.Inputs)
	if err != nil {
		return err
	}
	for _, f := range cd.Files {
		st.addInput(f)
	}
	for _, m := range cd.Missing {
		st.degrade(m)
		p.logger.Warn("optional input missing", "stage", StageGrouping, "reason", m)
	}

	if cd.Membership != nil || cd.Info != nil {
		if err := setOnce(&st.Clusters, "clusters", hierarchy.ClusterStatistics(cd.Info, cd.Membership)); err != nil {
			return err
		}
	}
	if cd.Forest != nil {
		if err := setOnce(&st.Forest, "forest", cd.Forest.Stats()); err != nil {
			return err
		}
	}

	final := types.NewIDSet()
	for _, pr := range res.Proteins {
		final.Add(pr.ID)
	}
	universe := final.Sorted()

	groups, gs, err := hierarchy.ExpertGroups(p.cfg.Grouping, hierarchy.GroupInput{
		Membership: cd.Membership,
		Forest:     cd.Forest,
		Universe:   universe,
	})
	if err != nil {
		return err
	}
	validated, vs := hierarchy.Validate(groups, final)
	if len(validated) == 0 {
		d := hierarchy.Degradation{From: gs.Mode, To: types.GroupingRandom, Reason: "no expert group intersects the final protein set"}
		gs.Degradations = append(gs.Degradations, d)
		gs.Mode = types.GroupingRandom
		groups = hierarchy.RandomGroups(universe, p.cfg.Grouping.MaxExperts, p.cfg.Grouping.Seed)
		validated, vs = hierarchy.Validate(groups, final)
	}
	gs.Summary = hierarchy.Summarize(groups)
	for _, d := range gs.Degradations {
		st.degrade(d.String())
		p.logger.Warn("grouping degraded", "from", d.From, "to", d.To, "reason", d.Reason)
	}
	if err := setOnce(&st.Grouping, StageGrouping, gs); err != nil {
		return err
	}
	if err := setOnce(&st.Validation, "validation", vs); err != nil {
		return err
	}
	if err := setOnce(&st.ExpertGroups, "expert_groups", hierarchy.Summarize(validated)); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "grouping: %d expert groups (%s mode), %s members dropped by validation\n",
		len(validated), gs.Mode, humanize.Comma(int64(vs.DroppedMembers)))
	p.logger.Info("stage finished", "stage", StageGrouping, "mode", gs.Mode, "groups", len(validated))

	res.Groups = validated
	return nil
}

func (p *Pipeline) summarize(res *Result) error {
	st := res.Stats
	sum := Summary{
		InitialProteins:     st.Quality.Initial,
		FinalProteins:       len(res.Proteins),
		InitialInteractions: st.Interactions.Raw,
		FinalInteractions:   len(res.Interactions),
		ExpertGroups:        len(res.Groups),
		MalformedLines:      st.MalformedLines(),
	}
	sum.ProteinRetention = stats.Rate(sum.FinalProteins, sum.InitialProteins)
	sum.InteractionRetention = stats.Rate(sum.FinalInteractions, sum.InitialInteractions)
	if err := setOnce(&st.Summary, "summary", sum); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "\nRun summary: %s proteins (%s), %s interactions (%s), %d expert groups, %s malformed lines\n",
		humanize.Comma(int64(sum.FinalProteins)), stats.FormatPercent(sum.ProteinRetention),
		humanize.Comma(int64(sum.FinalInteractions)), stats.FormatPercent(sum.InteractionRetention),
		sum.ExpertGroups, humanize.Comma(int64(sum.MalformedLines)))
	return nil
}
