package devnet

// DumpableMethod is the name of an admin or submission RPC whose call
// record is eligible for inclusion in a dump file. A dumped method name
// plus its parameters is replayed verbatim against a fresh engine on load.
type DumpableMethod string

const (
	MethodMint              DumpableMethod = "mint"
	MethodCreateBlock       DumpableMethod = "createBlock"
	MethodSetTime           DumpableMethod = "setTime"
	MethodIncreaseTime      DumpableMethod = "increaseTime"
	MethodAbortBlocks       DumpableMethod = "abortBlocks"
	MethodAcceptOnL1        DumpableMethod = "acceptOnL1"
	MethodSetGasPrice       DumpableMethod = "setGasPrice"
	MethodPostmanLoad       DumpableMethod = "postmanLoad"
	MethodPostmanSendToL2   DumpableMethod = "postmanSendMessageToL2"
	MethodDeclare           DumpableMethod = "addDeclareTransaction"
	MethodDeployAccount     DumpableMethod = "addDeployAccountTransaction"
	MethodInvoke            DumpableMethod = "addInvokeTransaction"
)

// dumpableMethods is the fixed allow-list: writes that change observable
// engine state. postmanFlush is not on the list. The L1-handler
// transactions a flush relays go straight to Pipeline.SubmitL1Handler, not
// through any method on this list, so a dump holds no record of them.
var dumpableMethods = []DumpableMethod{
	MethodMint,
	MethodCreateBlock,
	MethodSetTime,
	MethodIncreaseTime,
	MethodAbortBlocks,
	MethodAcceptOnL1,
	MethodSetGasPrice,
	MethodPostmanLoad,
	MethodPostmanSendToL2,
	MethodDeclare,
	MethodDeployAccount,
	MethodInvoke,
}

// DumpableMethods returns the fixed allow-list of RPC method names a
// transport should record into a dump file, in a stable order. A
// transport layer (out of this module's scope) is expected to call this
// once and filter every inbound request's method name against the result
// before appending a call record.
func (e *Engine) DumpableMethods() []DumpableMethod {
	out := make([]DumpableMethod, len(dumpableMethods))
	copy(out, dumpableMethods)
	return out
}

// IsDumpable reports whether method belongs to the fixed allow-list.
func (e *Engine) IsDumpable(method DumpableMethod) bool {
	for _, m := range dumpableMethods {
		if m == method {
			return true
		}
	}
	return false
}
