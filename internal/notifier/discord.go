package notifier

import (
	"fmt"
	"log"

	"github.com/aoacon/portal-api/internal/models"
	"github.com/bwmarrin/discordgo"
)

// Notifier posts registration and payment events to the organising
// committee channel. Best-effort: handlers log failures and move on.
type Notifier interface {
	NotifyRegistration(user models.User, registration models.Registration) error
	NotifyPayment(user models.User, registration models.Registration, amount int64) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}
	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
	}
	return err
}

func (n *DiscordNotifier) NotifyRegistration(user models.User, registration models.Registration) error {
	pkg := "Conference Only"
	if label := addOnLabel(registration); label != "" {
		pkg = "Conference + " + label
	}
	message := fmt.Sprintf("📋 **Registration Update**\n**Attendee:** %s (%s)\n**Number:** #%s\n**Package:** %s\n**Phase:** %s\n**Total:** ₹%d\n**Status:** %s",
		user.Name,
		user.Email,
		registration.RegistrationNumber,
		pkg,
		registration.BookingPhase,
		registration.TotalAmount,
		registration.PaymentStatus,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyPayment(user models.User, registration models.Registration, amount int64) error {
	message := fmt.Sprintf("💳 **Payment Captured**\n**Attendee:** %s (%s)\n**Number:** #%s\n**Amount:** ₹%d\n**Paid so far:** ₹%d of ₹%d",
		user.Name,
		user.Email,
		registration.RegistrationNumber,
		amount,
		registration.TotalPaid,
		registration.TotalAmount,
	)
	return n.send(message)
}

func addOnLabel(r models.Registration) string {
	labels := ""
	add := func(s string) {
		if labels != "" {
			labels += " + "
		}
		labels += s
	}
	if r.AddWorkshop {
		add("Workshop")
	}
	if r.AddAoaCourse {
		add("AOA Certified Course")
	}
	if r.AddLifeMembership {
		add("AOA Life Membership")
	}
	return labels
}
