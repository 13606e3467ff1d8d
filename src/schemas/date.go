package schemas

import (
	"fmt"
	"strconv"
	"time"

	"roundup/src/utils"
)

// Date is a calendar day on the wire, formatted YYYY-MM-DD. Renewal and cost
// dates carry no time component, the embedded time is midnight UTC.
type Date struct {
	time.Time
}

func (d Date) ToTime() time.Time {
	return d.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := time.Parse(utils.ShortDashDateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Format(utils.ShortDashDateLayout))), nil
}
