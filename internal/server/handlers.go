package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/scanseq-mcp/internal/imaging"
	"github.com/ironsheep/scanseq-mcp/internal/sequence"
	"github.com/ironsheep/scanseq-mcp/internal/transform"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sequence_open", "sequence_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Errorf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Sequence lifecycle
	case "sequence_open":
		return s.handleSequenceOpen(ctx, args)
	case "sequence_close":
		return s.handleSequenceClose(args)

	// Lookups
	case "sequence_locate":
		return s.handleSequenceLocate(ctx, args)
	case "sequence_get_pixel":
		return s.handleSequenceGetPixel(ctx, args)
	case "sequence_sample_color":
		return s.handleSequenceSampleColor(ctx, args)
	case "sequence_dominant_colors":
		return s.handleSequenceDominantColors(ctx, args)

	// Regions
	case "sequence_crop":
		return s.handleSequenceCrop(ctx, args)
	case "sequence_export":
		return s.handleSequenceExport(ctx, args)
	case "sequence_overlay":
		return s.handleSequenceOverlay(ctx, args)
	case "sequence_edges":
		return s.handleSequenceEdges(ctx, args)
	case "sequence_compare_regions":
		return s.handleSequenceCompareRegions(ctx, args)

	// Calibration
	case "calibration_fit":
		return s.handleCalibrationFit(args)
	case "calibration_apply":
		return s.handleCalibrationApply(args)
	case "sequence_measure":
		return s.handleSequenceMeasure(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Sequence Lifecycle Handlers ===

type sequenceOpenArgs struct {
	Folder string   `json:"folder"`
	Paths  []string `json:"paths"`
	Name   string   `json:"name"`
}

type sequenceSummary struct {
	Sequence string             `json:"sequence"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Channels int                `json:"channels"`
	Bands    []imaging.BandInfo `json:"bands"`
}

func (s *Server) handleSequenceOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	key, seq, err := s.openSequence(ctx, a.Folder, a.Name, a.Paths)
	if err != nil {
		return nil, err
	}

	bands, err := imaging.DescribeBands(seq)
	if err != nil {
		return nil, err
	}
	shape := seq.Shape()
	return &sequenceSummary{
		Sequence: key,
		Width:    shape.Width,
		Height:   shape.Height,
		Channels: shape.Channels,
		Bands:    bands,
	}, nil
}

type sequenceRefArgs struct {
	Sequence string `json:"sequence"`
}

func (s *Server) handleSequenceClose(args json.RawMessage) (interface{}, error) {
	var a sequenceRefArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.closeSequence(a.Sequence); err != nil {
		return nil, err
	}
	return map[string]interface{}{"closed": a.Sequence}, nil
}

// === Lookup Handlers ===

type sequenceLocateArgs struct {
	Sequence string `json:"sequence"`
	Y        int    `json:"y"`
}

type locateResult struct {
	Y          int    `json:"y"`
	Band       int    `json:"band"`
	LocalY     int    `json:"local_y"`
	Path       string `json:"path"`
	BandOffset int    `json:"band_offset"`
	BandHeight int    `json:"band_height"`
}

func (s *Server) handleSequenceLocate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceLocateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	seq, err := s.sequenceFor(ctx, a.Sequence)
	if err != nil {
		return nil, err
	}

	band, localY, err := seq.Locate(a.Y)
	if err != nil {
		return nil, err
	}
	path, _ := seq.Path(band)
	offset, _ := seq.BandOffset(band)
	shape, _ := seq.BandShape(band)
	return &locateResult{
		Y:          a.Y,
		Band:       band,
		LocalY:     localY,
		Path:       path,
		BandOffset: offset,
		BandHeight: shape.Height,
	}, nil
}

type sequenceGetPixelArgs struct {
	Sequence string `json:"sequence"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Channel  *int   `json:"channel,omitempty"`
}

type pixelResult struct {
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Channel *int      `json:"channel,omitempty"`
	Value   *float64  `json:"value,omitempty"`
	Values  []float64 `json:"values,omitempty"`
}

func (s *Server) handleSequenceGetPixel(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceGetPixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	seq, err := s.sequenceFor(ctx, a.Sequence)
	if err != nil {
		return nil, err
	}

	if a.Channel != nil {
		v, err := seq.PixelContext(ctx, a.X, a.Y, *a.Channel)
		if err != nil {
			return nil, err
		}
		return &pixelResult{X: a.X, Y: a.Y, Channel: a.Channel, Value: &v}, nil
	}

	vals, err := seq.ChannelsContext(ctx, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return &pixelResult{X: a.X, Y: a.Y, Values: vals}, nil
}

type sequenceSampleColorArgs struct {
	Sequence string  `json:"sequence"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	White    float64 `json:"white"`
	Points   []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

func (s *Server) handleSequenceSampleColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.compositeFor(ctx, a.Sequence, a.White)
	if err != nil {
		return nil, err
	}

	if len(a.Points) == 0 {
		return imaging.SampleColor(img, a.X, a.Y)
	}
	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleColorsMulti(img, points)
}

type sequenceDominantColorsArgs struct {
	Sequence string          `json:"sequence"`
	Count    int             `json:"count"`
	White    float64         `json:"white"`
	Region   *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handleSequenceDominantColors(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceDominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.compositeFor(ctx, a.Sequence, a.White)
	if err != nil {
		return nil, err
	}

	region := imaging.Region{X2: img.Bounds().Dx(), Y2: img.Bounds().Dy()}
	if a.Region != nil {
		region = *a.Region
	}
	return imaging.DominantColors(img, a.Count, region)
}

// === Region Handlers ===

type sequenceRegionArgs struct {
	Sequence string  `json:"sequence"`
	X1       int     `json:"x1"`
	Y1       int     `json:"y1"`
	X2       int     `json:"x2"`
	Y2       int     `json:"y2"`
	Scale    float64 `json:"scale"`
	White    float64 `json:"white"`
	Output   string  `json:"output"`
}

func (a sequenceRegionArgs) region() imaging.Region {
	return imaging.Region{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
}

func (s *Server) handleSequenceCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.compositeFor(ctx, a.Sequence, a.White)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.region(), a.Scale)
}

func (s *Server) handleSequenceExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, fmt.Errorf("output is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.compositeFor(ctx, a.Sequence, a.White)
	if err != nil {
		return nil, err
	}
	return imaging.Export(img, a.region(), a.Scale, a.Output)
}

type sequenceOverlayArgs struct {
	sequenceRegionArgs
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates,omitempty"`
	GridColor       string `json:"grid_color"`
	ShowBands       *bool  `json:"show_bands,omitempty"`
}

func (s *Server) handleSequenceOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing == 0 {
		a.GridSpacing = 100
	}
	seq, err := s.sequenceFor(ctx, a.Sequence)
	if err != nil {
		return nil, err
	}
	img, err := s.composite(ctx, seq, a.White)
	if err != nil {
		return nil, err
	}

	opts := imaging.OverlayOptions{
		Spacing:         a.GridSpacing,
		ShowCoordinates: a.ShowCoordinates == nil || *a.ShowCoordinates,
		GridColor:       a.GridColor,
	}
	if a.ShowBands == nil || *a.ShowBands {
		for i := 0; i < seq.Len(); i++ {
			off, _ := seq.BandOffset(i)
			opts.BandOffsets = append(opts.BandOffsets, off)
		}
	}
	return imaging.GridOverlay(img, a.region(), opts)
}

type sequenceEdgesArgs struct {
	sequenceRegionArgs
	Threshold  *int     `json:"threshold,omitempty"`
	BlurRadius *float64 `json:"blur_radius,omitempty"`
}

func (s *Server) handleSequenceEdges(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceEdgesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	threshold, radius := imaging.DefaultEdgeThreshold, imaging.DefaultEdgeBlurRadius
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if a.BlurRadius != nil {
		radius = *a.BlurRadius
	}
	img, err := s.compositeFor(ctx, a.Sequence, a.White)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.region(), threshold, radius)
}

type sequenceCompareRegionsArgs struct {
	Sequence string         `json:"sequence"`
	White    float64        `json:"white"`
	Region1  imaging.Region `json:"region1"`
	Region2  imaging.Region `json:"region2"`
}

func (s *Server) handleSequenceCompareRegions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceCompareRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.compositeFor(ctx, a.Sequence, a.White)
	if err != nil {
		return nil, err
	}
	return imaging.CompareRegions(img, a.Region1, a.Region2)
}

func (s *Server) compositeFor(ctx context.Context, ref string, white float64) (*imaging.Composite, error) {
	seq, err := s.sequenceFor(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.composite(ctx, seq, white)
}

// === Calibration Handlers ===

type calibrationFitArgs struct {
	Name      string    `json:"name"`
	Samples   []float64 `json:"samples"`
	Slope     *float64  `json:"slope,omitempty"`
	Intercept *float64  `json:"intercept,omitempty"`
}

type calibrationResult struct {
	Name      string  `json:"name"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Formula   string  `json:"formula"`
}

func (s *Server) handleCalibrationFit(args json.RawMessage) (interface{}, error) {
	var a calibrationFitArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	var t transform.LinearAffine[float64]
	switch {
	case a.Slope != nil || a.Intercept != nil:
		if a.Slope == nil || a.Intercept == nil || len(a.Samples) > 0 {
			return nil, fmt.Errorf("give samples, or both slope and intercept")
		}
		t = transform.NewLinearAffine(*a.Slope, *a.Intercept)
	default:
		var err error
		if t, err = transform.FitLinearAffine(a.Samples); err != nil {
			return nil, err
		}
	}

	s.storeCalibration(a.Name, t)
	return &calibrationResult{Name: a.Name, Slope: t.Slope(), Intercept: t.Intercept(), Formula: t.String()}, nil
}

type calibrationApplyArgs struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Inverse bool      `json:"inverse"`
}

func (s *Server) handleCalibrationApply(args json.RawMessage) (interface{}, error) {
	var a calibrationApplyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.calibration(a.Name)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(a.Values))
	for i, v := range a.Values {
		if !a.Inverse {
			out[i] = t.Forward(v)
			continue
		}
		if out[i], err = t.Backward(v); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{"name": a.Name, "inverse": a.Inverse, "values": out}, nil
}

type sequenceMeasureArgs struct {
	Sequence     string `json:"sequence"`
	X1           int    `json:"x1"`
	Y1           int    `json:"y1"`
	X2           int    `json:"x2"`
	Y2           int    `json:"y2"`
	XCalibration string `json:"x_calibration"`
	YCalibration string `json:"y_calibration"`
}

func (s *Server) handleSequenceMeasure(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sequenceMeasureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	seq, err := s.sequenceFor(ctx, a.Sequence)
	if err != nil {
		return nil, err
	}
	shape := seq.Shape()
	for _, p := range [][2]int{{a.X1, a.Y1}, {a.X2, a.Y2}} {
		if !shape.Contains(p[0], p[1], 0) {
			return nil, fmt.Errorf("point (%d,%d) outside sequence %v: %w", p[0], p[1], shape, sequence.ErrOutOfRange)
		}
	}

	xCal, err := s.calibration(a.XCalibration)
	if err != nil {
		return nil, err
	}
	yCal, err := s.calibration(a.YCalibration)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureCalibrated(imaging.Point{X: a.X1, Y: a.Y1}, imaging.Point{X: a.X2, Y: a.Y2}, xCal, yCal), nil
}
