package render

import (
	"fmt"
	"strconv"
	"strings"

	"clipforge/internal/highlight"
)

// GraphSpec describes everything the filter graph needs. Ranges are absolute
// source times in plan order; the renderer seeks to SegmentStart so trim
// offsets inside the graph are relative to it.
type GraphSpec struct {
	SegmentStart   float64
	Ranges         []highlight.Range
	GameplayHeight int
	FacecamHeight  int
	GameTopCropPx  int
	GameBottomCrop int
	FaceWRatio     float64
	FaceHRatio     float64
	FaceXOffsetPx  int
	FaceYOffsetPx  int
	FPS            int
	Sharpen        bool
	SharpenPreset  string
	HasAudio       bool
}

// BuildFilterGraph assembles the filter_complex string for a GraphSpec.
func BuildFilterGraph(spec GraphSpec) string {
	var sb strings.Builder

	wr := g(spec.FaceWRatio)
	hr := g(spec.FaceHRatio)

	sb.WriteString("[0:v]split=2[vmain][vfc];")
	fmt.Fprintf(&sb,
		"[vfc]crop=w=iw*%s:h=ih*%s:x=iw-(iw*%s)-%d:y=ih-(ih*%s)-%d,"+
			"scale=1080:%d:force_original_aspect_ratio=increase,crop=1080:%d[face];",
		wr, hr, wr, spec.FaceXOffsetPx, hr, spec.FaceYOffsetPx,
		spec.FacecamHeight, spec.FacecamHeight)
	fmt.Fprintf(&sb,
		"[vmain]crop=w=iw:h=ih-%d-%d:x=0:y=%d,"+
			"scale=1080:%d:force_original_aspect_ratio=increase,crop=1080:%d[game];",
		spec.GameTopCropPx, spec.GameBottomCrop, spec.GameTopCropPx,
		spec.GameplayHeight, spec.GameplayHeight)
	sb.WriteString("[game][face]vstack=inputs=2[stack];")
	sb.WriteString("[stack]setsar=1,format=yuv420p[base]")

	if len(spec.Ranges) > 1 {
		fmt.Fprintf(&sb, ";[base]split=%d", len(spec.Ranges))
		for i := range spec.Ranges {
			fmt.Fprintf(&sb, "[vsrc%d]", i)
		}
		for i, r := range spec.Ranges {
			fmt.Fprintf(&sb, ";[vsrc%d]trim=start=%s:duration=%s,setpts=PTS-STARTPTS[vseg%d]",
				i, g(r.Start-spec.SegmentStart), g(r.End-r.Start), i)
		}
		sb.WriteByte(';')
		for i := range spec.Ranges {
			fmt.Fprintf(&sb, "[vseg%d]", i)
		}
		fmt.Fprintf(&sb, "concat=n=%d:v=1:a=0,fps=%d,setpts=N/(%d*TB)[v]",
			len(spec.Ranges), spec.FPS, spec.FPS)
	} else {
		fmt.Fprintf(&sb, ";[base]fps=%d,setpts=N/(%d*TB)[v]", spec.FPS, spec.FPS)
	}

	if spec.Sharpen {
		fmt.Fprintf(&sb, ";[v]%s[v]", unsharpFilter(spec.SharpenPreset))
	}

	if spec.HasAudio {
		const audioChain = "aresample=async=1:first_pts=0,loudnorm=I=-14:TP=-1.5:LRA=11,alimiter=limit=0.98"
		if len(spec.Ranges) > 1 {
			fmt.Fprintf(&sb, ";[0:a]asplit=%d", len(spec.Ranges))
			for i := range spec.Ranges {
				fmt.Fprintf(&sb, "[asrc%d]", i)
			}
			for i, r := range spec.Ranges {
				fmt.Fprintf(&sb, ";[asrc%d]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS[aseg%d]",
					i, g(r.Start-spec.SegmentStart), g(r.End-r.Start), i)
			}
			sb.WriteByte(';')
			for i := range spec.Ranges {
				fmt.Fprintf(&sb, "[aseg%d]", i)
			}
			fmt.Fprintf(&sb, "concat=n=%d:v=0:a=1[a0];[a0]%s[a]", len(spec.Ranges), audioChain)
		} else {
			fmt.Fprintf(&sb, ";[0:a]%s[a]", audioChain)
		}
	}

	return sb.String()
}

func unsharpFilter(preset string) string {
	switch preset {
	case "strong":
		return "unsharp=5:5:1.0:5:5:0.0"
	case "medium":
		return "unsharp=5:5:0.8:5:5:0.0"
	default:
		return "unsharp=5:5:0.6:5:5:0.0"
	}
}

func g(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
