package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"codeberg.org/mutker/freqctl/internal/api"
	"codeberg.org/mutker/freqctl/internal/errors"
	"codeberg.org/mutker/freqctl/internal/frequency"
)

const usage = `Usage: freqctl [flags] <command>

Commands:
  list                  list frequency domains
  props <domain>        show domain properties
  clocks <domain>       list available clocks
  range <domain>        show the configured clock range
  set <domain> <min> <max>
                        set the clock range in MHz
  state <domain>        show current clocks and throttle reasons
  throttle <domain>     show throttle time
  monitor               sample all domains until interrupted
`

type cli struct {
	out io.Writer
	api surface
}

type command struct {
	args int
	run  func(c *cli, args []string) error
}

var commands = map[string]command{
	"list":     {0, (*cli).list},
	"props":    {1, (*cli).props},
	"clocks":   {1, (*cli).clocks},
	"range":    {1, (*cli).showRange},
	"set":      {3, (*cli).set},
	"state":    {1, (*cli).state},
	"throttle": {1, (*cli).throttle},
}

func usageError(format string, args ...any) error {
	return errors.New().WithData(errors.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// resultError turns a failed API call into an error carrying the same code.
func resultError(op string, res api.Result) error {
	if res == api.Success {
		return nil
	}

	return errors.New().Wrap(errors.CodeOf(res.Err()), fmt.Errorf("%s: %s", op, res))
}

func (c *cli) run(name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return usageError("unknown command %q", name)
	}
	if len(args) != cmd.args {
		return usageError("%s takes %d argument(s), got %d", name, cmd.args, len(args))
	}

	return cmd.run(c, args)
}

func (c *cli) handles() ([]frequency.Handle, error) {
	var count uint32
	if res := c.api.enum(&count, nil); res != api.Success {
		return nil, resultError("enumerate domains", res)
	}

	handles := make([]frequency.Handle, count)
	if res := c.api.enum(&count, handles); res != api.Success {
		return nil, resultError("enumerate domains", res)
	}

	return handles[:count], nil
}

func (c *cli) handle(arg string) (frequency.Handle, error) {
	idx, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return frequency.Handle{}, usageError("invalid domain %q", arg)
	}

	handles, err := c.handles()
	if err != nil {
		return frequency.Handle{}, err
	}
	if idx >= uint64(len(handles)) {
		return frequency.Handle{}, usageError("domain %d out of range, %d domain(s) available", idx, len(handles))
	}

	return handles[idx], nil
}

func mhz(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *cli) list(_ []string) error {
	handles, err := c.handles()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tKIND\tSUBDEVICE\tCONTROL\tMIN\tMAX")
	for _, h := range handles {
		p, res := c.api.properties(h)
		if res != api.Success {
			return resultError("get properties", res)
		}
		fmt.Fprintf(w, "%d\t%s\t%t\t%t\t%s\t%s\n",
			h.Index(), p.kind, p.onSubdevice, p.canControl, mhz(p.min), mhz(p.max))
	}

	return w.Flush()
}

func (c *cli) props(args []string) error {
	h, err := c.handle(args[0])
	if err != nil {
		return err
	}

	p, res := c.api.properties(h)
	if res != api.Success {
		return resultError("get properties", res)
	}

	fmt.Fprintf(c.out, "kind: %s\non_subdevice: %t\ncan_control: %t\nmin: %s\nmax: %s\n",
		p.kind, p.onSubdevice, p.canControl, mhz(p.min), mhz(p.max))
	if p.hasStep {
		fmt.Fprintf(c.out, "step: %s\n", strconv.FormatFloat(p.step, 'f', 4, 64))
	}

	return nil
}

func (c *cli) clocks(args []string) error {
	h, err := c.handle(args[0])
	if err != nil {
		return err
	}

	var count uint32
	if res := c.api.clocks(h, &count, nil); res != api.Success {
		return resultError("get clocks", res)
	}
	clocks := make([]float64, count)
	if res := c.api.clocks(h, &count, clocks); res != api.Success {
		return resultError("get clocks", res)
	}

	values := make([]string, 0, count)
	for _, v := range clocks[:count] {
		values = append(values, mhz(v))
	}
	fmt.Fprintln(c.out, strings.Join(values, " "))

	return nil
}

func (c *cli) showRange(args []string) error {
	h, err := c.handle(args[0])
	if err != nil {
		return err
	}

	r, res := c.api.getRange(h)
	if res != api.Success {
		return resultError("get range", res)
	}
	fmt.Fprintf(c.out, "min: %s\nmax: %s\n", mhz(r.Min), mhz(r.Max))

	return nil
}

func (c *cli) set(args []string) error {
	h, err := c.handle(args[0])
	if err != nil {
		return err
	}

	minClock, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return usageError("invalid min %q", args[1])
	}
	maxClock, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return usageError("invalid max %q", args[2])
	}

	if res := c.api.setRange(h, frequency.Range{Min: minClock, Max: maxClock}); res != api.Success {
		return resultError("set range", res)
	}

	return c.showRange(args[:1])
}

func (c *cli) state(args []string) error {
	h, err := c.handle(args[0])
	if err != nil {
		return err
	}

	s, res := c.api.state(h)
	if res != api.Success {
		return resultError("get state", res)
	}

	fmt.Fprintf(c.out, "request: %s\ntdp: %s\nefficient: %s\nactual: %s\n",
		mhz(s.Request), mhz(s.TDP), mhz(s.Efficient), mhz(s.Actual))
	if s.CurrentVoltage == frequency.VoltageUnknown {
		fmt.Fprintln(c.out, "voltage: unknown")
	} else {
		fmt.Fprintf(c.out, "voltage: %s\n", mhz(s.CurrentVoltage))
	}
	fmt.Fprintf(c.out, "throttle_reasons: %#x\n", s.ThrottleReasons)

	return nil
}

func (c *cli) throttle(args []string) error {
	h, err := c.handle(args[0])
	if err != nil {
		return err
	}

	tt, res := c.api.throttleTime(h)
	if res != api.Success {
		return resultError("get throttle time", res)
	}
	fmt.Fprintf(c.out, "throttle_time: %d\ntimestamp: %d\n", tt.ThrottleTime, tt.Timestamp)

	return nil
}
