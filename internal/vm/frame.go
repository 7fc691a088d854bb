package vm

// Stack is the operand stack shared between a caller and its callees.
// Arguments are pushed last-to-first so the first argument is on top.
type Stack struct {
	values []Value
}

func (s *Stack) Push(v Value) {
	s.values = append(s.values, v)
}

// Pop removes the top value. It panics on an empty stack.
func (s *Stack) Pop() Value {
	v, ok := s.TryPop()
	if !ok {
		panic(ErrStackUnderflow)
	}
	return v
}

// TryPop removes the top value, reporting false on an empty stack.
func (s *Stack) TryPop() (Value, bool) {
	n := len(s.values)
	if n == 0 {
		return nil, false
	}
	v := s.values[n-1]
	s.values[n-1] = nil
	s.values = s.values[:n-1]
	return v, true
}

// Peek returns the value distance slots below the top.
func (s *Stack) Peek(distance int) (Value, bool) {
	idx := len(s.values) - 1 - distance
	if idx < 0 || distance < 0 {
		return nil, false
	}
	return s.values[idx], true
}

func (s *Stack) Len() int { return len(s.values) }

// truncate drops everything above height n.
func (s *Stack) truncate(n int) {
	if n < 0 {
		n = 0
	}
	for i := n; i < len(s.values); i++ {
		s.values[i] = nil
	}
	if n < len(s.values) {
		s.values = s.values[:n]
	}
}

// Frame is the call context of one activation.
type Frame struct {
	Stack Stack
}

func NewFrame() *Frame { return &Frame{} }

// ExtractArg pops the next argument and converts it with conv. A missing
// argument or a failed conversion is a fatal error.
func ExtractArg[T any](frame *Frame, conv func(Value) (T, bool)) (T, error) {
	var zero T
	v, ok := frame.Stack.TryPop()
	if !ok {
		return zero, ErrStackUnderflow
	}
	t, ok := conv(v)
	if !ok {
		return zero, typeErrorf("unexpected argument %s", v)
	}
	return t, nil
}

// Argument converters for ExtractArg.

func AsValue(v Value) (Value, bool) { return v, true }

func AsInteger(v Value) (*Integer, bool) {
	x, ok := v.(*Integer)
	return x, ok
}

func AsFloat(v Value) (*Float, bool) {
	x, ok := v.(*Float)
	return x, ok
}

func AsBoolean(v Value) (*Boolean, bool) {
	x, ok := v.(*Boolean)
	return x, ok
}

func AsString(v Value) (*String, bool) {
	x, ok := v.(*String)
	return x, ok
}

func AsObject(v Value) (*Object, bool) {
	x, ok := v.(*Object)
	return x, ok
}

func AsList(v Value) (*List, bool) {
	x, ok := v.(*List)
	return x, ok
}

func AsStruct(v Value) (*Struct, bool) {
	x, ok := v.(*Struct)
	return x, ok
}

func AsType(v Value) (Type, bool) {
	x, ok := v.(Type)
	return x, ok
}
