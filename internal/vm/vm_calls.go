package vm

import "github.com/oil-watt/watt/internal/address"

// execDefine: "pop value; if has_previous, pop container first and define
// there; else define in current frame" (spec §4.4 "Define").
func (vm *VM) execDefine(file string, op *Opcode) error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	if op.HasPrevious {
		container, err := vm.pop()
		if err != nil {
			return err
		}
		env, err := vm.containerEnv(vm.addr(file, *op), container)
		if err != nil {
			return err
		}
		env.Define(op.Name, val)
		return nil
	}
	vm.env().Define(op.Name, val)
	return nil
}

// execStore: "same as Define but requires name to already exist" (spec
// §4.4 "Store").
func (vm *VM) execStore(file string, op *Opcode) error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	a := vm.addr(file, *op)
	if op.HasPrevious {
		container, err := vm.pop()
		if err != nil {
			return err
		}
		env, err := vm.containerEnv(a, container)
		if err != nil {
			return err
		}
		return env.Store(a, op.Name, val)
	}
	return vm.env().Store(a, op.Name, val)
}

// execLoad: "mirror of Define/Store for read" (spec §4.4 "Load").
func (vm *VM) execLoad(file string, op *Opcode) error {
	a := vm.addr(file, *op)
	if op.HasPrevious {
		container, err := vm.pop()
		if err != nil {
			return err
		}
		env, err := vm.containerEnv(a, container)
		if err != nil {
			return err
		}
		v, err := env.Load(a, op.Name)
		if err != nil {
			return err
		}
		if op.ShouldPush {
			vm.push(v)
		}
		return nil
	}
	v, err := vm.env().Load(a, op.Name)
	if err != nil {
		return err
	}
	if op.ShouldPush {
		vm.push(v)
	}
	return nil
}

// containerEnv resolves the environment a member load/store/define targets
// for instances, units, and modules (access chain targets; spec §4.2 "a.b.c").
func (vm *VM) containerEnv(a address.Address, v Value) (*Environment, error) {
	switch v.Kind {
	case KInstance:
		return vm.gc.mustInstance(v.Ref).Env, nil
	case KUnit:
		return vm.gc.mustUnit(v.Ref).Env, nil
	case KModule:
		return vm.gc.mustModule(v.Ref).Env, nil
	default:
		return nil, runtimeErrf(a, "member access needs an instance, unit, or module", "not a container")
	}
}

func (vm *VM) execDefineFn(file string, op *Opcode) error {
	var closure *Environment
	if op.MakeClosure {
		closure = vm.env()
	}
	h := vm.gc.NewFn(&FnObj{
		Name:    op.Name,
		Params:  op.Params,
		Body:    op.Body,
		Closure: closure,
	})
	fnVal := RefVal(KFn, h)
	if op.Kind == OpDefineFn {
		vm.env().Define(op.Name, fnVal)
	} else {
		vm.push(fnVal)
	}
	vm.gc.Unguard(h)
	return nil
}

func (vm *VM) execDefineTrait(file string, op *Opcode) error {
	h := vm.gc.NewTrait(&TraitObj{Name: op.Name, Fns: op.TraitFns})
	vm.gc.Root(h)
	vm.gc.Unguard(h)
	vm.env().Define(op.Name, RefVal(KTrait, h))
	return nil
}

func (vm *VM) execNative(file string, op *Opcode) error {
	h, ok := vm.natives[op.Name]
	if !ok {
		return runtimeErrf(vm.addr(file, *op), "register this native before referencing it", "unknown native \""+op.Name+"\"")
	}
	vm.push(RefVal(KNative, h))
	return nil
}

// execCall implements spec §4.5's "Function call protocol".
func (vm *VM) execCall(file string, op *Opcode) error {
	a := vm.addr(file, *op)

	var callee Value
	var err error
	if op.HasPrevious {
		callee, err = vm.pop()
	} else {
		callee, err = vm.env().Load(a, op.Name)
	}
	if err != nil {
		return err
	}

	if op.Args != nil {
		if _, err := vm.run(op.Args); err != nil {
			return err
		}
	}

	switch callee.Kind {
	case KFn:
		return vm.callFn(a, callee, op.ShouldPush)
	case KNative:
		return vm.callNative(a, callee, op.ShouldPush)
	default:
		return runtimeErrf(a, "only functions and natives can be called", "not a callable")
	}
}

func (vm *VM) callFn(a address.Address, fnVal Value, shouldPush bool) error {
	fn := vm.gc.mustFn(fnVal.Ref)
	args, err := vm.popN(len(fn.Params))
	if err != nil {
		return err
	}

	base := vm.builtins
	if fn.Closure != nil {
		base = fn.Closure
	}
	callEnv := NewChildEnvironment(base)
	if fn.Closure != nil {
		callEnv.SetClosure(fn.Closure)
	}
	if fn.OwnerKind != OwnerNone {
		callEnv.Define("self", ownerValue(fn.OwnerKind, fn.OwnerRef))
	}
	// bind parameter names to popped argument values in source order
	for i, p := range fn.Params {
		callEnv.Define(p, args[i])
	}

	frame := newCallFrame(callEnv, fn.Closure)
	vm.frames = append(vm.frames, frame)
	cf, err := vm.run(fn.Body)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if err != nil {
		return err
	}
	if cf.Kind == cfReturn {
		if shouldPush {
			vm.push(cf.Value)
		}
		return nil
	}
	if shouldPush {
		vm.push(Null())
	}
	return nil
}

func ownerValue(kind OwnerKind, ref Handle) Value {
	switch kind {
	case OwnerInstance:
		return RefVal(KInstance, ref)
	case OwnerUnit:
		return RefVal(KUnit, ref)
	case OwnerModule:
		return RefVal(KModule, ref)
	default:
		return Null()
	}
}

// callMethod invokes a zero-arg method on an instance directly (used for
// is_ok()/unwrap() in error-propagation, and trait-default synthesis).
func (vm *VM) callMethod(a address.Address, instVal Value, name string, args []Value) (Value, error) {
	inst := vm.gc.mustInstance(instVal.Ref)
	fnVal, err := inst.Env.Load(a, name)
	if err != nil {
		return Value{}, err
	}
	if fnVal.Kind != KFn {
		return Value{}, runtimeErrf(a, "expected a method", "\""+name+"\" is not callable")
	}
	for _, arg := range args {
		vm.push(arg)
	}
	if err := vm.callFn(a, fnVal, true); err != nil {
		return Value{}, err
	}
	return vm.pop()
}

func (vm *VM) callNative(a address.Address, nativeVal Value, shouldPush bool) error {
	native := vm.gc.mustNative(nativeVal.Ref)
	return native.Fn(vm, a, shouldPush)
}

// execInstance implements spec §4.5's "Type instantiation".
func (vm *VM) execInstance(file string, op *Opcode) error {
	a := vm.addr(file, *op)
	typeVal, err := vm.pop()
	if err != nil {
		return err
	}
	if typeVal.Kind != KType {
		return runtimeErrf(a, "'new' needs a Type value", "not a type")
	}
	if op.Args != nil {
		if _, err := vm.run(op.Args); err != nil {
			return err
		}
	}
	t := vm.gc.mustType(typeVal.Ref)
	args, err := vm.popN(len(t.CtorParams))
	if err != nil {
		return err
	}

	instEnv := NewChildEnvironment(t.DefScope)
	for i, p := range t.CtorParams {
		instEnv.Define(p, args[i])
	}

	instHandle := vm.gc.alloc(&InstanceObj{TypeRef: typeVal.Ref, Env: instEnv})
	vm.gc.Guard(instHandle)

	frame := newCallFrame(instEnv, nil)
	vm.frames = append(vm.frames, frame)
	_, err = vm.run(t.Body)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if err != nil {
		return err
	}

	// bind every Fn within the populated environment to owner = this instance
	vm.patchOwners(instEnv, OwnerInstance, instHandle)

	if err := vm.checkTraits(a, t, instEnv); err != nil {
		return err
	}

	if instEnv.Exists("init") {
		if _, err := vm.callMethod(a, RefVal(KInstance, instHandle), "init", nil); err != nil {
			return err
		}
	}

	vm.gc.Unguard(instHandle)
	if op.ShouldPush {
		vm.push(RefVal(KInstance, instHandle))
	}
	return nil
}

// patchOwners patches every Fn directly bound in env to carry owner (spec
// §3 invariants: "Within a type body, member functions are patched to
// carry the Instance (or Unit) as their owner after the body has run").
func (vm *VM) patchOwners(env *Environment, kind OwnerKind, owner Handle) {
	for name, v := range env.vars {
		if v.Kind != KFn {
			continue
		}
		fn := vm.gc.mustFn(v.Ref)
		fn.OwnerKind = kind
		fn.OwnerRef = owner
		_ = name
	}
}

// checkTraits verifies spec §4.5's "Trait check": for each declared trait,
// every required method exists with the correct arity; installs default
// bodies where absent; fatal otherwise.
func (vm *VM) checkTraits(a address.Address, t *TypeObj, env *Environment) error {
	for _, traitName := range t.Impls {
		traitVal, err := vm.env().Load(a, traitName)
		if err != nil {
			return err
		}
		if traitVal.Kind != KTrait {
			return runtimeErrf(a, "'impl' needs a trait name", "\""+traitName+"\" is not a trait")
		}
		trait := vm.gc.mustTrait(traitVal.Ref)
		for _, tf := range trait.Fns {
			existing, ok := env.vars[tf.Name]
			if ok && existing.Kind == KFn {
				fn := vm.gc.mustFn(existing.Ref)
				if len(fn.Params) != tf.ParamCount {
					return runtimeErrf(a, "match the trait's declared arity",
						"type impls "+trait.Name+", but fn "+tf.Name+" has the wrong arity")
				}
				continue
			}
			if !tf.HasDefault {
				return runtimeErrf(a, "implement every required trait method",
					"type impls "+trait.Name+", but doesn't impl fn "+tf.Name+"("+itoa(tf.ParamCount)+")")
			}
			h := vm.gc.NewFn(&FnObj{Name: tf.Name, Params: tf.Params, Body: tf.DefaultBody})
			env.Define(tf.Name, RefVal(KFn, h))
			vm.gc.Unguard(h)
		}
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// execDefineType registers a Type (spec §4.4 "DefineType").
func (vm *VM) execDefineType(file string, op *Opcode) error {
	h := vm.gc.NewType(&TypeObj{
		Name:       op.Name,
		CtorParams: op.CtorParams,
		Body:       op.Body,
		Impls:      op.Impls,
		DefScope:   vm.env(),
	})
	vm.gc.Root(h)
	vm.gc.Unguard(h)
	vm.env().Define(op.Name, RefVal(KType, h))
	return nil
}

// execDefineUnit builds and registers a singleton unit, running its body
// once (spec §4.4 "DefineUnit", §4.5 "Unit definition").
func (vm *VM) execDefineUnit(file string, op *Opcode) error {
	a := vm.addr(file, *op)
	unitEnv := NewChildEnvironment(vm.env())

	unitHandle := vm.gc.alloc(&UnitObj{Name: op.Name, Env: unitEnv})
	vm.gc.Guard(unitHandle)

	frame := newCallFrame(unitEnv, nil)
	vm.frames = append(vm.frames, frame)
	_, err := vm.run(op.Body)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if err != nil {
		return err
	}

	vm.patchOwners(unitEnv, OwnerUnit, unitHandle)
	vm.gc.Root(unitHandle)
	vm.gc.Unguard(unitHandle)
	vm.env().Define(op.Name, RefVal(KUnit, unitHandle))

	if unitEnv.Exists("init") {
		if _, err := vm.callMethod(a, RefVal(KUnit, unitHandle), "init", nil); err != nil {
			return err
		}
	}
	return nil
}

// execImportModule implements spec §4.5's "Module loading": on hit the
// cached Module value is bound; on miss the module's chunk executes in a
// fresh environment rooted at the builtins, producing a Module value that
// is cached and bound.
func (vm *VM) execImportModule(file string, op *Opcode) error {
	if h, ok := vm.modules[op.ModuleID]; ok {
		vm.env().Define(op.Variable, RefVal(KModule, h))
		return nil
	}
	info, ok := vm.moduleInfo[op.ModuleID]
	if !ok {
		return runtimeErrf(vm.addr(file, *op), "check the import path", "unknown module \""+op.ModuleID+"\"")
	}

	modEnv := NewChildEnvironment(vm.builtins)
	modHandle := vm.gc.alloc(&ModuleObj{Path: info.Path, ID: op.ModuleID, Env: modEnv})
	vm.gc.Guard(modHandle)

	vm.moduleStack = append(vm.moduleStack, modHandle)
	frame := newCallFrame(modEnv, nil)
	vm.frames = append(vm.frames, frame)
	_, err := vm.run(info.Chunk)
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.moduleStack = vm.moduleStack[:len(vm.moduleStack)-1]
	if err != nil {
		return err
	}

	vm.gc.Root(modHandle)
	vm.gc.Unguard(modHandle)
	vm.modules[op.ModuleID] = modHandle
	vm.env().Define(op.Variable, RefVal(KModule, modHandle))
	return nil
}
