package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// SeedDemo loads the demo marketplace that seeds/demo.sql loads into Postgres.
func SeedDemo(s *Store) error {
	profiles := []domain.Profile{
		{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "Wizard", Balance: money("1150"), Type: domain.ProfileTypeClient},
		{ID: 2, FirstName: "Mr", LastName: "Robot", Profession: "Hacker", Balance: money("231.11"), Type: domain.ProfileTypeClient},
		{ID: 3, FirstName: "John", LastName: "Snow", Profession: "Knows nothing", Balance: money("451.3"), Type: domain.ProfileTypeClient},
		{ID: 4, FirstName: "Ash", LastName: "Kethcum", Profession: "Pokemon master", Balance: money("1.3"), Type: domain.ProfileTypeClient},
		{ID: 5, FirstName: "John", LastName: "Lenon", Profession: "Musician", Balance: money("64"), Type: domain.ProfileTypeContractor},
		{ID: 6, FirstName: "Linus", LastName: "Torvalds", Profession: "Programmer", Balance: money("1214"), Type: domain.ProfileTypeContractor},
		{ID: 7, FirstName: "Alan", LastName: "Turing", Profession: "Programmer", Balance: money("22"), Type: domain.ProfileTypeContractor},
		{ID: 8, FirstName: "Aragorn", LastName: "II Elessar Telcontarvalds", Profession: "Fighter", Balance: money("314"), Type: domain.ProfileTypeContractor},
	}
	for _, p := range profiles {
		s.AddProfile(p)
	}

	contracts := []domain.Contract{
		{ID: 1, Terms: "bla bla bla", Status: domain.ContractStatusTerminated, ClientID: 1, ContractorID: 5},
		{ID: 2, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 1, ContractorID: 6},
		{ID: 3, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 2, ContractorID: 6},
		{ID: 4, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 2, ContractorID: 7},
		{ID: 5, Terms: "bla bla bla", Status: domain.ContractStatusNew, ClientID: 3, ContractorID: 8},
		{ID: 6, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 3, ContractorID: 7},
		{ID: 7, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 4, ContractorID: 7},
		{ID: 8, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 4, ContractorID: 6},
		{ID: 9, Terms: "bla bla bla", Status: domain.ContractStatusInProgress, ClientID: 4, ContractorID: 8},
	}
	for _, c := range contracts {
		if err := s.AddContract(c); err != nil {
			return err
		}
	}

	jobs := []domain.Job{
		{ID: 1, Description: "work", Price: money("200"), ContractID: 1},
		{ID: 2, Description: "work", Price: money("201"), ContractID: 2},
		{ID: 3, Description: "work", Price: money("202"), ContractID: 3},
		{ID: 4, Description: "work", Price: money("200"), ContractID: 4},
		{ID: 5, Description: "work", Price: money("200"), ContractID: 7},
		{ID: 6, Description: "work", Price: money("2020"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26.737Z"), ContractID: 7},
		{ID: 7, Description: "work", Price: money("200"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26.737Z"), ContractID: 2},
		{ID: 8, Description: "work", Price: money("200"), Paid: true, PaymentDate: paidOn("2020-08-16T19:11:26.737Z"), ContractID: 3},
		{ID: 9, Description: "work", Price: money("200"), Paid: true, PaymentDate: paidOn("2020-08-17T19:11:26.737Z"), ContractID: 1},
		{ID: 10, Description: "work", Price: money("200"), Paid: true, PaymentDate: paidOn("2020-08-17T19:11:26.737Z"), ContractID: 5},
		{ID: 11, Description: "work", Price: money("21"), Paid: true, PaymentDate: paidOn("2020-08-10T19:11:26.737Z"), ContractID: 1},
		{ID: 12, Description: "work", Price: money("21"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26.737Z"), ContractID: 2},
		{ID: 13, Description: "work", Price: money("121"), Paid: true, PaymentDate: paidOn("2020-08-15T19:11:26.737Z"), ContractID: 3},
		{ID: 14, Description: "work", Price: money("121"), Paid: true, PaymentDate: paidOn("2020-08-14T23:11:26.737Z"), ContractID: 3},
	}
	for _, j := range jobs {
		if err := s.AddJob(j); err != nil {
			return err
		}
	}
	return nil
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func paidOn(v string) *time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return &t
}
