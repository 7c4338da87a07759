package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
const (
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeBalanceOverflow     = "BALANCE_OVERFLOW"
	CodeClaimAlreadyExists  = "CLAIM_ALREADY_EXISTS"
	CodeClaimNotFound       = "CLAIM_NOT_FOUND"
	CodeNotClaimOwner       = "NOT_CLAIM_OWNER"
	CodeBlockNumberMismatch = "BLOCK_NUMBER_MISMATCH"
	CodeBlockNumberOverflow = "BLOCK_NUMBER_OVERFLOW"
	CodeNonceOverflow       = "NONCE_OVERFLOW"
	CodeUnknownCall         = "UNKNOWN_CALL"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeNotFound            = "NOT_FOUND"
	CodeUnknown             = "UNKNOWN"
)

var enUS = map[Code]string{
	CodeInsufficientBalance: "Account {{.account}} cannot pay {{.amount}}; its balance is {{.balance}}.",
	CodeBalanceOverflow:     "Crediting {{.amount}} would overflow the balance of {{.account}}.",
	CodeClaimAlreadyExists:  "Claim {{.claim}} is already owned by {{.owner}}.",
	CodeClaimNotFound:       "Claim {{.claim}} does not exist.",
	CodeNotClaimOwner:       "{{.caller}} does not own claim {{.claim}}.",
	CodeBlockNumberMismatch: "Expected block {{.expected}}, but the header declares {{.declared}}.",
	CodeBlockNumberOverflow: "The chain cannot advance past block {{.block_number}}.",
	CodeNonceOverflow:       "The nonce of {{.account}} cannot grow any further.",
	CodeUnknownCall:         "The call {{.call}} is not supported.",
	CodeInvalidArgument:     "The request is invalid.",
	CodeNotFound:            "The requested resource was not found.",
	CodeUnknown:             "An unexpected error occurred.",
}

var ptBR = map[Code]string{
	CodeInsufficientBalance: "A conta {{.account}} não pode pagar {{.amount}}; o saldo é {{.balance}}.",
	CodeBalanceOverflow:     "Creditar {{.amount}} estouraria o saldo de {{.account}}.",
	CodeClaimAlreadyExists:  "O registro {{.claim}} já pertence a {{.owner}}.",
	CodeClaimNotFound:       "O registro {{.claim}} não existe.",
	CodeNotClaimOwner:       "{{.caller}} não é dono do registro {{.claim}}.",
	CodeBlockNumberMismatch: "Era esperado o bloco {{.expected}}, mas o cabeçalho declara {{.declared}}.",
	CodeBlockNumberOverflow: "A cadeia não pode avançar além do bloco {{.block_number}}.",
	CodeNonceOverflow:       "O nonce de {{.account}} não pode mais crescer.",
	CodeUnknownCall:         "A chamada {{.call}} não é suportada.",
	CodeInvalidArgument:     "A requisição é inválida.",
	CodeNotFound:            "O recurso solicitado não foi encontrado.",
	CodeUnknown:             "Ocorreu um erro inesperado.",
}
