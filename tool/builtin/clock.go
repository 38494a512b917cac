package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentloop/tool"
)

// ClockName is the registered name of the clock tool.
const ClockName = "current_time"

type clockArgs struct {
	Timezone string `json:"timezone,omitempty" description:"IANA time zone such as Europe/Berlin; defaults to UTC"`
}

// NewClock returns a tool reporting the current time. now may be nil.
func NewClock(now func() time.Time) tool.Tool {
	if now == nil {
		now = time.Now
	}
	return tool.NewFunctionToolFromStruct(
		ClockName,
		"Get the current date and time in RFC 3339 format",
		clockArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			loc := time.UTC
			if tz, _ := args["timezone"].(string); tz != "" {
				l, err := time.LoadLocation(tz)
				if err != nil {
					return nil, fmt.Errorf("unknown timezone %q", tz)
				}
				loc = l
			}
			return now().In(loc).Format(time.RFC3339), nil
		},
	)
}

// Tools returns every builtin tool plus the terminate tool.
func Tools() []tool.Tool {
	return []tool.Tool{NewCalculator(), NewClock(nil), tool.NewTerminateTool()}
}
