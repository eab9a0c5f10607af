package server

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)

	user, err := s.services.Users.Validate(ctx, body.Username, body.Password).Wait(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}
	return c.JSON(loginResponse{Token: token, User: *user})
}

type bankRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

func (s *Server) createBank(c *fiber.Ctx) error {
	var body bankRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	bank, err := s.services.Banks.Create(ctx, body.Name).Wait(ctx)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(bank)
}

func (s *Server) updateBank(c *fiber.Ctx) error {
	var body bankRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	// An omitted active flag keeps the stored one; a rename must not
	// reactivate a deactivated bank.
	var active bool
	if body.Active != nil {
		active = *body.Active
	} else {
		current, err := s.services.Banks.FindByID(ctx, c.Params("id")).Wait(ctx)
		if err != nil {
			return err
		}
		active = current.Active
	}
	bank, err := s.services.Banks.Update(ctx, c.Params("id"), body.Name, active).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(bank)
}

func (s *Server) listBanks(c *fiber.Ctx) error {
	ctx := userContext(c)
	var (
		banks []domain.Bank
		err   error
	)
	if c.QueryBool("active") {
		banks, err = s.services.Banks.ListAllActive(ctx).Wait(ctx)
	} else {
		banks, err = s.services.Banks.ListAll(ctx).Wait(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(banks)
}

func (s *Server) findBank(c *fiber.Ctx) error {
	ctx := userContext(c)
	bank, err := s.services.Banks.FindByID(ctx, c.Params("id")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(bank)
}

func (s *Server) findBankByName(c *fiber.Ctx) error {
	ctx := userContext(c)
	bank, err := s.services.Banks.FindByName(ctx, pathParam(c, "name")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(bank)
}

type conceptRequest struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Active *bool           `json:"active"`
}

func (s *Server) createConcept(c *fiber.Ctx) error {
	var body conceptRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	concept, err := s.services.Concepts.Create(ctx, body.Name, domain.ConceptType(body.Type), body.Value).Wait(ctx)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(concept)
}

func (s *Server) updateConcept(c *fiber.Ctx) error {
	var body conceptRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	var active bool
	if body.Active != nil {
		active = *body.Active
	} else {
		current, err := s.services.Concepts.FindByID(ctx, c.Params("id")).Wait(ctx)
		if err != nil {
			return err
		}
		active = current.Active
	}
	concept, err := s.services.Concepts.Update(ctx, c.Params("id"), body.Name,
		domain.ConceptType(body.Type), body.Value, active).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(concept)
}

func (s *Server) listConcepts(c *fiber.Ctx) error {
	ctx := userContext(c)
	var (
		concepts []domain.Concept
		err      error
	)
	if c.QueryBool("active") {
		concepts, err = s.services.Concepts.ListAllActive(ctx).Wait(ctx)
	} else {
		concepts, err = s.services.Concepts.ListAll(ctx).Wait(ctx)
	}
	if err != nil {
		return err
	}
	return c.JSON(concepts)
}

func (s *Server) findConcept(c *fiber.Ctx) error {
	ctx := userContext(c)
	concept, err := s.services.Concepts.FindByID(ctx, c.Params("id")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(concept)
}

func (s *Server) findConceptByName(c *fiber.Ctx) error {
	ctx := userContext(c)
	concept, err := s.services.Concepts.FindByName(ctx, pathParam(c, "name")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(concept)
}

// pathParam returns a route parameter with percent escapes decoded, so
// names containing spaces survive the round trip.
func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) createUser(c *fiber.Ctx) error {
	var body createUserRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	user, err := s.services.Users.Create(ctx, body.Username, body.Password, domain.Role(body.Role)).Wait(ctx)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	var body changePasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	user, err := s.services.Users.ChangePassword(ctx, body.OldPassword, body.NewPassword).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	var body resetPasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	user, err := s.services.Users.ResetPassword(ctx, c.Params("username"), body.NewPassword).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) setUserActive(c *fiber.Ctx) error {
	var body setActiveRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	user, err := s.services.Users.SetActive(ctx, c.Params("username"), body.Active).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	ctx := userContext(c)
	users, err := s.services.Users.ListAll(ctx).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

type createTransactionRequest struct {
	BankID    string          `json:"bank_id"`
	ConceptID string          `json:"concept_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (s *Server) createTransaction(c *fiber.Ctx) error {
	var body createTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	tr, err := s.services.Transactions.Create(ctx, body.BankID, body.ConceptID, body.Amount).Wait(ctx)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tr)
}

func (s *Server) listTransactions(c *fiber.Ctx) error {
	ctx := userContext(c)
	txs, err := s.services.Transactions.ListAll(ctx, c.QueryInt("limit")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(txs)
}

func (s *Server) findTransaction(c *fiber.Ctx) error {
	ctx := userContext(c)
	tr, err := s.services.Transactions.FindByID(ctx, c.Params("id")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(tr)
}

type createReversalRequest struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

func (s *Server) createReversal(c *fiber.Ctx) error {
	var body createReversalRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	req, err := s.services.Reversals.Request(ctx, body.TransactionID, body.Message).Wait(ctx)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

type resolveReversalRequest struct {
	Answer  string `json:"answer"`
	Approve bool   `json:"approve"`
}

func (s *Server) resolveReversal(c *fiber.Ctx) error {
	var body resolveReversalRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	req, err := s.services.Reversals.Resolve(ctx, c.Params("id"), body.Answer, body.Approve).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func (s *Server) listPendingReversals(c *fiber.Ctx) error {
	ctx := userContext(c)
	reqs, err := s.services.Reversals.ListPending(ctx, c.QueryInt("limit")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(reqs)
}

func (s *Server) findReversal(c *fiber.Ctx) error {
	ctx := userContext(c)
	req, err := s.services.Reversals.FindByID(ctx, c.Params("id")).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

type configRequest struct {
	OrgName    string `json:"org_name"`
	OrgTaxID   string `json:"org_tax_id"`
	OrgAddress string `json:"org_address"`
	OrgSlogan  string `json:"org_slogan"`
}

func (s *Server) getConfig(c *fiber.Ctx) error {
	ctx := userContext(c)
	cfg, err := s.services.Config.Get(ctx).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

func (s *Server) updateConfig(c *fiber.Ctx) error {
	var body configRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	ctx := userContext(c)
	cfg, err := s.services.Config.Update(ctx, body.OrgName, body.OrgTaxID, body.OrgAddress, body.OrgSlogan).Wait(ctx)
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}
