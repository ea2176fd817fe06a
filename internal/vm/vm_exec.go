package vm

// run is the dispatch loop: linear iteration over a chunk's opcodes (spec
// §4.5 "Dispatch"). Each opcode returns either success or a ControlFlow;
// the first non-cfNone ControlFlow aborts this chunk's remaining opcodes
// and is returned to the caller, who decides whether to catch it (Loop
// catches Continue/Break; Call catches Return) or propagate it further.
func (vm *VM) run(chunk *Chunk) (ControlFlow, error) {
	for i := range chunk.Ops {
		cf, err := vm.exec(chunk.File, &chunk.Ops[i])
		if err != nil {
			return ControlFlow{}, err
		}
		if cf.Kind != cfNone {
			return cf, nil
		}
	}
	return cfNormal, nil
}

func (vm *VM) exec(file string, op *Opcode) (ControlFlow, error) {
	switch op.Kind {
	case OpPush:
		if op.Value.Kind == KString {
			// String values carry no Data/Ref at emit time (the GC arena
			// doesn't exist yet); the literal text rides in Name and is
			// interned here, at the point the arena is actually live.
			v := vm.NewString(op.Name)
			vm.push(v)
			vm.UnguardValue(v)
			return cfNormal, nil
		}
		vm.push(op.Value)
		return cfNormal, nil

	case OpMakeList:
		elems, err := vm.popN(op.Count)
		if err != nil {
			return ControlFlow{}, err
		}
		v := vm.NewList(elems)
		vm.push(v)
		vm.UnguardValue(v)
		return cfNormal, nil

	case OpPop:
		_, err := vm.pop()
		return cfNormal, err

	case OpDuplicate:
		v, err := vm.pop()
		if err != nil {
			return ControlFlow{}, err
		}
		vm.push(v)
		vm.push(v)
		return cfNormal, nil

	case OpBin:
		return cfNormal, vm.execBin(file, op)

	case OpCond:
		return cfNormal, vm.execCond(file, op)

	case OpNeg:
		return cfNormal, vm.execNeg(file, op)

	case OpBang:
		return cfNormal, vm.execBang(file, op)

	case OpLogic:
		return cfNormal, vm.execLogic(file, op)

	case OpIf:
		return vm.execIf(file, op)

	case OpLoop:
		return vm.execLoop(file, op)

	case OpEndLoop:
		if op.CurrentIteration {
			return ControlFlow{Kind: cfContinue}, nil
		}
		return ControlFlow{Kind: cfBreak}, nil

	case OpRet:
		var v Value
		if op.Args != nil {
			cf, err := vm.run(op.Args)
			if err != nil {
				return ControlFlow{}, err
			}
			if cf.Kind != cfNone {
				return cf, nil
			}
			popped, err := vm.pop()
			if err != nil {
				return ControlFlow{}, err
			}
			v = popped
		} else {
			v = Null()
		}
		return cfReturnValue(v), nil

	case OpDefine:
		return cfNormal, vm.execDefine(file, op)

	case OpStore:
		return cfNormal, vm.execStore(file, op)

	case OpLoad:
		return cfNormal, vm.execLoad(file, op)

	case OpDeleteLocal:
		vm.env().Delete(op.Name)
		return cfNormal, nil

	case OpDefineFn, OpAnonymousFn:
		return cfNormal, vm.execDefineFn(file, op)

	case OpDefineType:
		return cfNormal, vm.execDefineType(file, op)

	case OpDefineUnit:
		return cfNormal, vm.execDefineUnit(file, op)

	case OpDefineTrait:
		return cfNormal, vm.execDefineTrait(file, op)

	case OpCall:
		return cfNormal, vm.execCall(file, op)

	case OpInstance:
		return cfNormal, vm.execInstance(file, op)

	case OpNative:
		return cfNormal, vm.execNative(file, op)

	case OpErrorPropagation:
		return vm.execErrorPropagation(file, op)

	case OpImpls:
		return cfNormal, vm.execImpls(file, op)

	case OpImportModule:
		return cfNormal, vm.execImportModule(file, op)

	default:
		return cfNormal, runtimeErrf(vm.addr(file, *op), "this is an internal VM bug", "unhandled opcode")
	}
}

// execLogic implements short-circuit and/or (spec §4.5 "Short-circuit").
func (vm *VM) execLogic(file string, op *Opcode) error {
	if _, err := vm.run(op.Left); err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}
	lb, ok := left.Truthy()
	if !ok {
		return runtimeErrf(vm.addr(file, *op), "and/or require boolean operands", "non-boolean operand to '"+op.Op+"'")
	}
	if (op.Op == "and" && !lb) || (op.Op == "or" && lb) {
		vm.push(left)
		return nil
	}
	if _, err := vm.run(op.Right); err != nil {
		return err
	}
	right, err := vm.pop()
	if err != nil {
		return err
	}
	if _, ok := right.Truthy(); !ok {
		return runtimeErrf(vm.addr(file, *op), "and/or require boolean operands", "non-boolean operand to '"+op.Op+"'")
	}
	vm.push(right)
	return nil
}

// execIf implements conditional dispatch; cond and body are sub-chunks
// (spec §4.4 "If(cond, body, elif?)"). Entering the body pushes a fresh
// environment (spec §4.5 "Control flow in blocks").
func (vm *VM) execIf(file string, op *Opcode) (ControlFlow, error) {
	if _, err := vm.run(op.Cond); err != nil {
		return ControlFlow{}, err
	}
	cond, err := vm.pop()
	if err != nil {
		return ControlFlow{}, err
	}
	b, ok := cond.Truthy()
	if !ok {
		return ControlFlow{}, runtimeErrf(vm.addr(file, *op), "if conditions must be boolean", "non-boolean 'if' condition")
	}
	if b {
		vm.frame().push(vm.env())
		defer vm.frame().pop()
		return vm.run(op.Body)
	}
	if op.Elif != nil {
		return vm.exec(file, op.Elif)
	}
	return cfNormal, nil
}

// execLoop repeats body until a Break/Return control-flow propagates out
// (spec §4.4 "Loop(body)"); it catches Continue (swallows it, loops again)
// and Break (swallows it, exits), but lets Return propagate to the
// enclosing function (spec §4.5 "Loop catches Continue/Break").
func (vm *VM) execLoop(file string, op *Opcode) (ControlFlow, error) {
	for {
		vm.frame().push(vm.env())
		cf, err := vm.run(op.Body)
		vm.frame().pop()
		if err != nil {
			return ControlFlow{}, err
		}
		switch cf.Kind {
		case cfBreak:
			return cfNormal, nil
		case cfReturn:
			return cf, nil
		default:
			// cfNone or cfContinue: loop again
		}
	}
}

// execErrorPropagation implements spec §4.4/§4.5's ErrorPropagation: pop
// an instance, call its zero-arity is_ok(); on false, propagate Return(the
// original instance) to the nearest enclosing function boundary; on true,
// call unwrap() and push its result iff requested.
func (vm *VM) execErrorPropagation(file string, op *Opcode) (ControlFlow, error) {
	inst, err := vm.pop()
	if err != nil {
		return ControlFlow{}, err
	}
	if inst.Kind != KInstance {
		return ControlFlow{}, runtimeErrf(vm.addr(file, *op), "only instances support '?'", "invalid error-propagation target")
	}
	a := vm.addr(file, *op)
	okVal, err := vm.callMethod(a, inst, "is_ok", nil)
	if err != nil {
		return ControlFlow{}, err
	}
	ok, isBool := okVal.Truthy()
	if !isBool {
		return ControlFlow{}, runtimeErrf(a, "is_ok() must return Bool", "is_ok() did not return a boolean")
	}
	if !ok {
		return cfReturnValue(inst), nil
	}
	unwrapped, err := vm.callMethod(a, inst, "unwrap", nil)
	if err != nil {
		return ControlFlow{}, err
	}
	if op.ShouldPush {
		vm.push(unwrapped)
	}
	return cfNormal, nil
}

func (vm *VM) execImpls(file string, op *Opcode) error {
	traitV, err := vm.pop()
	if err != nil {
		return err
	}
	instV, err := vm.pop()
	if err != nil {
		return err
	}
	if traitV.Kind != KTrait {
		return runtimeErrf(vm.addr(file, *op), "'impls' expects a trait name on the right", "right-hand side of 'impls' is not a trait")
	}
	if instV.Kind != KInstance {
		vm.push(BoolVal(false))
		return nil
	}
	trait := vm.gc.mustTrait(traitV.Ref)
	inst := vm.gc.mustInstance(instV.Ref)
	for _, tf := range trait.Fns {
		if !inst.Env.Exists(tf.Name) {
			vm.push(BoolVal(false))
			return nil
		}
	}
	vm.push(BoolVal(true))
	return nil
}
