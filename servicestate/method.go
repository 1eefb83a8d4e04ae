package servicestate

// Method enumerates the CRUD calls of a remote service.
type Method int

const (
	MethodFind Method = iota
	MethodGet
	MethodCreate
	MethodUpdate
	MethodPatch
	MethodRemove

	methodCount = iota
)

// Methods lists every CRUD method in declaration order.
var Methods = [methodCount]Method{MethodFind, MethodGet, MethodCreate, MethodUpdate, MethodPatch, MethodRemove}

var methodNames = [methodCount]string{"find", "get", "create", "update", "patch", "remove"}

func (m Method) String() string {
	if m < 0 || int(m) >= methodCount {
		return "unknown"
	}

	return methodNames[m]
}

// reads reports whether m is a read-style call (loading rather than saving).
func (m Method) reads() bool { return m == MethodFind || m == MethodGet }
