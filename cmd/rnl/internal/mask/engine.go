package mask

// Engine applies a Policy to Value trees. It is immutable and safe for
// concurrent use.
type Engine struct {
	policy     Policy
	classifier *Classifier
}

func NewEngine(p Policy) *Engine {
	p = p.clone()
	return &Engine{policy: p, classifier: NewClassifier(p)}
}

// Policy returns a copy of the policy the engine was built from.
func (e *Engine) Policy() Policy { return e.policy.clone() }

func (e *Engine) IsSensitive(field string) bool {
	return e.classifier.IsSensitive(field)
}

type frame struct {
	in  Value
	out *Value
}

// Mask returns a redacted copy of v. The value of every sensitive object
// field is replaced by MaskScalar and not descended into; errors become
// {error, name, stack} objects; everything else keeps its shape.
func (e *Engine) Mask(v Value) Value {
	var root Value
	stack := []frame{{in: v, out: &root}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch fr.in.kind {
		case KindArray:
			items := make([]Value, len(fr.in.items))
			*fr.out = Value{kind: KindArray, items: items}
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, frame{in: fr.in.items[i], out: &items[i]})
			}
		case KindObject:
			fields := make([]Field, len(fr.in.fields))
			*fr.out = Value{kind: KindObject, fields: fields}
			for i := len(fields) - 1; i >= 0; i-- {
				f := fr.in.fields[i]
				fields[i].Key = f.Key
				if e.classifier.IsSensitive(f.Key) {
					fields[i].Value = MaskScalar(f.Value)
					continue
				}
				stack = append(stack, frame{in: f.Value, out: &fields[i].Value})
			}
		case KindError:
			*fr.out = errorObject(fr.in.ErrorInfo())
		default:
			*fr.out = fr.in
		}
	}
	return root
}

// MaskAny converts x with FromAny under the engine's depth limit and masks
// the result.
func (e *Engine) MaskAny(x any) (Value, error) {
	v, err := FromAny(x, e.policy.MaxDepth)
	if err != nil {
		return Value{}, err
	}
	return e.Mask(v), nil
}
