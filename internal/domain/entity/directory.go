package entity

// Company is directory reference data resolved by the company directory
// collaborator.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BankAccount is a payment source account belonging to a company.
type BankAccount struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	BankName  string `json:"bank_name"`
	Number    string `json:"number"`
}
