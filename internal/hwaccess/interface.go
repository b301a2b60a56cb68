package hwaccess

// Attribute names a numeric hardware attribute independently of how a backend
// stores it.
type Attribute string

const (
	AttrMin             Attribute = "min"
	AttrMax             Attribute = "max"
	AttrHWMin           Attribute = "hw_min"
	AttrHWMax           Attribute = "hw_max"
	AttrRequest         Attribute = "request"
	AttrTDP             Attribute = "tdp"
	AttrEfficient       Attribute = "efficient"
	AttrActual          Attribute = "actual"
	AttrVoltage         Attribute = "voltage"
	AttrThrottleReasons Attribute = "throttle_reasons"
)

// Accessor reads and writes numeric hardware attributes. Calls are
// synchronous and a failure on one attribute says nothing about another.
type Accessor interface {
	Read(attr Attribute) (float64, error)
	Write(attr Attribute, value float64) error
}
