package contract

// raisin is the crowdfunding contract interface. Funds are addressed by a
// uint256 index; raisins(index) exposes the stored record.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "raisin",
		Name:        "Raisin crowdfunding",
		Description: "Raisin fund manager: initFund, donateToken, batchTokenDonate, endFund, fundWithdraw, refund.",
		ABI:         raisinABI,
	})
}

const raisinABI = `[
	{"type":"function","name":"initFund","stateMutability":"nonpayable","inputs":[{"name":"_amount","type":"uint256"},{"name":"_token","type":"address"},{"name":"_recipient","type":"address"}],"outputs":[]},
	{"type":"function","name":"donateToken","stateMutability":"nonpayable","inputs":[{"name":"_token","type":"address"},{"name":"_index","type":"uint256"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"batchTokenDonate","stateMutability":"nonpayable","inputs":[{"name":"_tokens","type":"address[]"},{"name":"_indices","type":"uint256[]"},{"name":"_amounts","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"endFund","stateMutability":"nonpayable","inputs":[{"name":"_index","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"fundWithdraw","stateMutability":"nonpayable","inputs":[{"name":"_index","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"refund","stateMutability":"nonpayable","inputs":[{"name":"_index","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"raisins","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
		{"name":"fundBalance","type":"uint256"},
		{"name":"goal","type":"uint256"},
		{"name":"token","type":"address"},
		{"name":"raiser","type":"address"},
		{"name":"recipient","type":"address"},
		{"name":"expires","type":"uint64"}
	]},
	{"type":"event","name":"FundStarted","anonymous":false,"inputs":[{"name":"amount","type":"uint256","indexed":false},{"name":"index","type":"uint256","indexed":true},{"name":"token","type":"address","indexed":false},{"name":"raiser","type":"address","indexed":true}]},
	{"type":"event","name":"TokenDonated","anonymous":false,"inputs":[{"name":"adr","type":"address","indexed":true},{"name":"token","type":"address","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"index","type":"uint256","indexed":true}]},
	{"type":"event","name":"FundEnded","anonymous":false,"inputs":[{"name":"index","type":"uint256","indexed":true}]}
]`
