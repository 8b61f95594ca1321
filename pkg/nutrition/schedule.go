package nutrition

import "fmt"

// FeedingSlot is one enteral feed in a 24h schedule.
type FeedingSlot struct {
	Time        string  `json:"time"`          // HH:MM
	VolumePerKg float64 `json:"volume_per_kg"` // ml/kg
	Type        string  `json:"type"`
}

// GenerateFeedingSchedule spreads the plan's enteral volume evenly over
// EnteralFeedingFrequency feeds starting at 00:00. Plans without a frequency
// get an empty schedule.
func GenerateFeedingSchedule(plan NutritionPlan) []FeedingSlot {
	perFeed, ok := plan.VolumePerFeed()
	if !ok {
		return []FeedingSlot{}
	}

	freq := plan.EnteralFeedingFrequency
	interval := 24.0 / float64(freq)
	slots := make([]FeedingSlot, 0, freq)
	for i := 0; i < freq; i++ {
		at := float64(i) * interval
		h := int(at)
		m := int((at - float64(h)) * 60)
		slots = append(slots, FeedingSlot{
			Time:        fmt.Sprintf("%02d:%02d", h, m),
			VolumePerKg: perFeed,
			Type:        plan.EnteralFeedingType,
		})
	}
	return slots
}
