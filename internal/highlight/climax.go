package highlight

// LocateClimax finds the start frame of the fixed-length window of hookFrames
// frames inside [seg.StartFrame, seg.EndFrame) whose energy sum is maximal.
// It runs a sliding running-sum scan, so the cost is linear in the segment
// length. On ties the earliest window wins, keeping results deterministic on
// flat or repeated-maxima inputs. When the segment is no longer than the
// window the segment start is returned.
func LocateClimax(env Envelope, seg Segment, hookFrames int) int {
	segFrames := seg.EndFrame - seg.StartFrame
	if hookFrames <= 0 || hookFrames >= segFrames {
		return seg.StartFrame
	}

	sum := 0.0
	for i := seg.StartFrame; i < seg.StartFrame+hookFrames; i++ {
		sum += env.Energy[i]
	}
	best := sum
	bestStart := seg.StartFrame

	for start := seg.StartFrame + 1; start+hookFrames <= seg.EndFrame; start++ {
		sum += env.Energy[start+hookFrames-1] - env.Energy[start-1]
		if sum > best {
			best = sum
			bestStart = start
		}
	}
	return bestStart
}
