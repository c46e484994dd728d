package cli

import (
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// instantValue is a time flag taking RFC3339 or a plain YYYY-MM-DD date
// (midnight UTC). The zero value means unset.
type instantValue struct {
	t *time.Time
}

var _ pflag.Value = instantValue{}

func (v instantValue) String() string {
	if v.t == nil || v.t.IsZero() {
		return ""
	}
	return v.t.Format(time.RFC3339)
}

func (v instantValue) Set(s string) error {
	t, err := cast.ToTimeE(s)
	if err != nil {
		return err
	}
	*v.t = t
	return nil
}

func (instantValue) Type() string { return "time" }

// instantVar registers a time flag on fs.
func instantVar(fs *pflag.FlagSet, p *time.Time, name, usage string) {
	fs.Var(instantValue{t: p}, name, usage)
}
