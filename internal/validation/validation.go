// Package validation reúne as validações de campos de cadastro:
// CPF (dígitos verificadores módulo 11), e-mail e normalização de telefones.
package validation

import "regexp"

var (
	nonDigits  = regexp.MustCompile(`\D`)
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizeDigits remove tudo que não for dígito (máscaras de CPF/telefone).
func NormalizeDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ValidateCPF aplica o algoritmo padrão de dígitos verificadores do CPF:
// dois dígitos calculados por soma ponderada (pesos decrescentes de 10 e 11
// até 2), resto da divisão por 11, com resultado acima de 9 mapeado para 0.
// CPFs com os 11 dígitos iguais são sempre rejeitados.
func ValidateCPF(cpf string) bool {
	numbers := NormalizeDigits(cpf)
	if len(numbers) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < 11; i++ {
		if numbers[i] != numbers[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(numbers[i]-'0') * (10 - i)
	}
	digit1 := 11 - (sum % 11)
	if digit1 > 9 {
		digit1 = 0
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(numbers[i]-'0') * (11 - i)
	}
	digit2 := 11 - (sum % 11)
	if digit2 > 9 {
		digit2 = 0
	}

	return digit1 == int(numbers[9]-'0') && digit2 == int(numbers[10]-'0')
}

// ValidateEmail aceita o formato local@dominio.tld.
func ValidateEmail(email string) bool {
	return emailShape.MatchString(email)
}
