package handlers

import (
	"multistore/internal/middleware"
	"multistore/internal/models"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves the back office blog, webhooks, notification
// templates and newsletter subscribers.
type ContentHandler struct {
	blog       *services.BlogService
	webhooks   *services.WebhookService
	templates  *services.TemplateService
	newsletter *services.NewsletterService
	validate   *validator.Validate
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(
	blog *services.BlogService,
	webhooks *services.WebhookService,
	templates *services.TemplateService,
	newsletter *services.NewsletterService,
) *ContentHandler {
	return &ContentHandler{
		blog:       blog,
		webhooks:   webhooks,
		templates:  templates,
		newsletter: newsletter,
		validate:   validator.New(),
	}
}

// RegisterRoutes registers the content routes.
func (h *ContentHandler) RegisterRoutes(router fiber.Router) {
	blog := router.Group("/blog")
	blog.Get("/", h.HandleGetPosts)
	blog.Get("/:id", h.HandleGetPost)
	blog.Post("/", h.HandleCreatePost)
	blog.Put("/:id", h.HandleUpdatePost)
	blog.Delete("/:id", h.HandleDeletePost)

	hooks := router.Group("/webhooks")
	hooks.Get("/", h.HandleGetWebhooks)
	hooks.Get("/:id", h.HandleGetWebhook)
	hooks.Post("/", h.HandleCreateWebhook)
	hooks.Put("/:id", h.HandleUpdateWebhook)
	hooks.Delete("/:id", h.HandleDeleteWebhook)

	templates := router.Group("/templates")
	templates.Get("/", h.HandleGetTemplates)
	templates.Get("/:key", h.HandleGetTemplate)
	templates.Put("/:key", h.HandleUpdateTemplate)
	templates.Get("/:key/preview", h.HandlePreviewTemplate)

	router.Get("/newsletter", h.HandleGetSubscribers)
}

// HandleGetPosts lists every post, drafts included.
func (h *ContentHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.blog.List(middleware.CurrentStore(c).ID, false)
	if err != nil {
		return respondError(c, "Could not retrieve posts", err)
	}
	return c.JSON(posts)
}

// HandleGetPost retrieves one post.
func (h *ContentHandler) HandleGetPost(c *fiber.Ctx) error {
	post, err := h.blog.Get(middleware.CurrentStore(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve post", err)
	}
	return c.JSON(post)
}

// HandleCreatePost creates a post.
func (h *ContentHandler) HandleCreatePost(c *fiber.Ctx) error {
	var post models.BlogPost
	if ok, err := bind(c, h.validate, &post); !ok {
		return err
	}
	post.ID = ""
	if err := h.blog.Create(middleware.CurrentStore(c).ID, &post); err != nil {
		return respondError(c, "Could not create post", err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleUpdatePost replaces a post.
func (h *ContentHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var post models.BlogPost
	if ok, err := bind(c, h.validate, &post); !ok {
		return err
	}
	post.ID = c.Params("id")
	if err := h.blog.Update(middleware.CurrentStore(c).ID, &post); err != nil {
		return respondError(c, "Could not update post", err)
	}
	return c.JSON(post)
}

// HandleDeletePost deletes a post.
func (h *ContentHandler) HandleDeletePost(c *fiber.Ctx) error {
	if err := h.blog.Delete(middleware.CurrentStore(c).ID, c.Params("id")); err != nil {
		return respondError(c, "Could not delete post", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetWebhooks lists the store's webhooks.
func (h *ContentHandler) HandleGetWebhooks(c *fiber.Ctx) error {
	hooks, err := h.webhooks.List(middleware.CurrentStore(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve webhooks", err)
	}
	return c.JSON(hooks)
}

// HandleGetWebhook retrieves one webhook.
func (h *ContentHandler) HandleGetWebhook(c *fiber.Ctx) error {
	hook, err := h.webhooks.Get(middleware.CurrentStore(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve webhook", err)
	}
	return c.JSON(hook)
}

// HandleCreateWebhook registers a webhook. A signing secret is generated when none is given.
func (h *ContentHandler) HandleCreateWebhook(c *fiber.Ctx) error {
	var hook models.Webhook
	if ok, err := bind(c, h.validate, &hook); !ok {
		return err
	}
	hook.ID = ""
	if err := h.webhooks.Create(middleware.CurrentStore(c).ID, &hook); err != nil {
		return respondError(c, "Could not create webhook", err)
	}
	return c.Status(fiber.StatusCreated).JSON(hook)
}

// HandleUpdateWebhook replaces a webhook.
func (h *ContentHandler) HandleUpdateWebhook(c *fiber.Ctx) error {
	var hook models.Webhook
	if ok, err := bind(c, h.validate, &hook); !ok {
		return err
	}
	hook.ID = c.Params("id")
	if err := h.webhooks.Update(middleware.CurrentStore(c).ID, &hook); err != nil {
		return respondError(c, "Could not update webhook", err)
	}
	return c.JSON(hook)
}

// HandleDeleteWebhook deletes a webhook.
func (h *ContentHandler) HandleDeleteWebhook(c *fiber.Ctx) error {
	if err := h.webhooks.Delete(middleware.CurrentStore(c).ID, c.Params("id")); err != nil {
		return respondError(c, "Could not delete webhook", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetTemplates lists the notification templates and their placeholders.
func (h *ContentHandler) HandleGetTemplates(c *fiber.Ctx) error {
	templates, err := h.templates.List(middleware.CurrentStore(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve templates", err)
	}
	return c.JSON(fiber.Map{
		"templates":    templates,
		"placeholders": services.PlaceholderNames(),
	})
}

// HandleGetTemplate retrieves one template.
func (h *ContentHandler) HandleGetTemplate(c *fiber.Ctx) error {
	tmpl, err := h.templates.Get(middleware.CurrentStore(c).ID, c.Params("key"))
	if err != nil {
		return respondError(c, "Could not retrieve template", err)
	}
	return c.JSON(tmpl)
}

// TemplateRequest is the editable part of a notification template.
type TemplateRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// HandleUpdateTemplate saves a template.
func (h *ContentHandler) HandleUpdateTemplate(c *fiber.Ctx) error {
	var req TemplateRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	tmpl := models.NotificationTemplate{Subject: req.Subject, Body: req.Body}
	if err := h.templates.Update(middleware.CurrentStore(c).ID, c.Params("key"), &tmpl); err != nil {
		return respondError(c, "Could not update template", err)
	}
	return c.JSON(tmpl)
}

// HandlePreviewTemplate renders a template with sample values.
func (h *ContentHandler) HandlePreviewTemplate(c *fiber.Ctx) error {
	rendered, err := h.templates.Preview(middleware.CurrentStore(c), c.Params("key"))
	if err != nil {
		return respondError(c, "Could not render template", err)
	}
	return c.JSON(rendered)
}

// HandleGetSubscribers lists the newsletter subscribers.
func (h *ContentHandler) HandleGetSubscribers(c *fiber.Ctx) error {
	subscribers, err := h.newsletter.List(middleware.CurrentStore(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve subscribers", err)
	}
	return c.JSON(subscribers)
}
