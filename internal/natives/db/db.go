// Package db backs the `std.db` virtual library: a single in-process
// sqlite handle wrapped as an Any value, built on modernc.org/sqlite
// (cgo-free) via database/sql (SPEC_FULL.md Domain Stack: "open, exec,
// query natives, demonstrating the Any(opaque host value) variant and the
// native-arity contract end to end").
package db

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/modules"
	"github.com/oil-watt/watt/internal/vm"
)

func init() {
	modules.RegisterVirtual("db", []string{"open", "exec", "query"})
}

// Register installs the std.db natives into v.
func Register(v *vm.VM) {
	v.RegisterNative("open", 1, openFn)
	v.RegisterNative("exec", 2, execFn)
	v.RegisterNative("query", 2, queryFn)
}

func wantString(v *vm.VM, site address.Address, who string, arg vm.Value) (string, error) {
	if arg.Kind != vm.KString {
		return "", &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"wrong-kind argument to "+who, who+" expects a String")}
	}
	return v.StringValue(arg), nil
}

func wantHandle(v *vm.VM, site address.Address, who string, arg vm.Value) (*sql.DB, error) {
	if arg.Kind != vm.KAny {
		return nil, &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"wrong-kind argument to "+who, who+" expects a handle returned by open")}
	}
	h, ok := v.AnyValue(arg).(*sql.DB)
	if !ok {
		return nil, &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"wrong-kind argument to "+who, who+" expects a handle returned by open")}
	}
	return h, nil
}

// open(path) -> Any(*sql.DB)
func openFn(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	path, err := wantString(v, site, "open", arg)
	if err != nil {
		return err
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"check the database path", "open failed: "+err.Error())}
	}
	if shouldPush {
		v.Push(v.NewAny(conn))
	}
	return nil
}

// exec(handle, sql) -> Null
func execFn(v *vm.VM, site address.Address, shouldPush bool) error {
	stmtV, err := v.PopArg()
	if err != nil {
		return err
	}
	handleV, err := v.PopArg()
	if err != nil {
		return err
	}
	handle, err := wantHandle(v, site, "exec", handleV)
	if err != nil {
		return err
	}
	stmt, err := wantString(v, site, "exec", stmtV)
	if err != nil {
		return err
	}
	if _, err := handle.Exec(stmt); err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"check the SQL statement", "exec failed: "+err.Error())}
	}
	if shouldPush {
		v.Push(vm.Null())
	}
	return nil
}

// query(handle, sql) -> List of rows, each row a List of [column, value] pairs
func queryFn(v *vm.VM, site address.Address, shouldPush bool) error {
	stmtV, err := v.PopArg()
	if err != nil {
		return err
	}
	handleV, err := v.PopArg()
	if err != nil {
		return err
	}
	handle, err := wantHandle(v, site, "query", handleV)
	if err != nil {
		return err
	}
	stmt, err := wantString(v, site, "query", stmtV)
	if err != nil {
		return err
	}
	rows, err := handle.Query(stmt)
	if err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"check the SQL statement", "query failed: "+err.Error())}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"driver did not report column names", "query failed: "+err.Error())}
	}

	var result []vm.Value
	for rows.Next() {
		scanTargets := make([]interface{}, len(cols))
		scanVals := make([]interface{}, len(cols))
		for i := range scanTargets {
			scanTargets[i] = &scanVals[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
				"column value could not be scanned", "query failed: "+err.Error())}
		}
		pairs := make([]vm.Value, len(cols))
		for i, col := range cols {
			pairs[i] = v.NewList([]vm.Value{v.NewString(col), sqlToValue(v, scanVals[i])})
		}
		result = append(result, v.NewList(pairs))
	}
	if err := rows.Err(); err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"row iteration failed", err.Error())}
	}

	if shouldPush {
		v.Push(v.NewList(result))
	}
	return nil
}

func sqlToValue(v *vm.VM, raw interface{}) vm.Value {
	switch x := raw.(type) {
	case nil:
		return vm.Null()
	case int64:
		return vm.IntVal(x)
	case float64:
		return vm.FloatVal(x)
	case bool:
		return vm.BoolVal(x)
	case string:
		return v.NewString(x)
	case []byte:
		return v.NewString(string(x))
	default:
		return v.NewString("")
	}
}
